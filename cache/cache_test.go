package cache

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Count  int
	Emails []string
}

func clonePayload(p payload) payload {
	p.Emails = slices.Clone(p.Emails)

	return p
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := New(clonePayload)

	in := payload{Count: 2, Emails: []string{"a@b.com", "c@d.com"}}
	s.Put("k", in)

	// Mutating the original after Put must not leak into the cache.
	in.Emails[0] = "mutated@x.com"

	got, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, payload{Count: 2, Emails: []string{"a@b.com", "c@d.com"}}, got)

	got.Emails[1] = "mutated@y.com"

	again, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, "c@d.com", again.Emails[1])
}

func TestStoreMiss(t *testing.T) {
	s := New(clonePayload)

	got, ok := s.Get("missing")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestStoreClear(t *testing.T) {
	s := New(clonePayload)

	for i := 0; i < 5; i++ {
		s.Put(fmt.Sprintf("k%d", i), payload{Count: i})
	}

	require.Equal(t, 5, s.Len())

	s.Clear()

	require.Equal(t, 0, s.Len())

	for i := 0; i < 5; i++ {
		_, ok := s.Get(fmt.Sprintf("k%d", i))
		require.False(t, ok)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New(clonePayload)

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)

		go func() {
			defer wg.Done()
			s.Put(fmt.Sprintf("k%d", i%5), payload{Count: i, Emails: []string{"x@y.com"}})
		}()

		go func() {
			defer wg.Done()
			s.Get(fmt.Sprintf("k%d", i%5))
		}()

		go func() {
			defer wg.Done()

			if i%10 == 0 {
				s.Clear()
			}
		}()
	}

	wg.Wait()
	require.LessOrEqual(t, s.Len(), 5)
}

func TestKeyOrderIndependent(t *testing.T) {
	a := Key([]string{"https://b.com", "https://a.com"}, "valid")
	b := Key([]string{"https://a.com", "https://b.com", "https://a.com"}, "valid")
	c := Key([]string{"https://a.com", "https://b.com"}, "all")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Equal(t, `{"urls":["https://a.com","https://b.com"],"filter":"valid"}`, a)
}
