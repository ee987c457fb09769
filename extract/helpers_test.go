package extract

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errNotFound = errors.New("not found")

// mapFetcher serves canned bodies by URL.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (m *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, url)

	body, ok := m.pages[url]
	if !ok {
		return nil, errNotFound
	}

	return []byte(body), nil
}

// mockRenderer returns canned text per URL and records what it rendered.
type mockRenderer struct {
	mu       sync.Mutex
	pages    map[string]string
	err      error
	rendered []string
}

func (m *mockRenderer) Render(_ context.Context, url string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rendered = append(m.rendered, url)

	if m.err != nil {
		return "", m.err
	}

	return m.pages[url], nil
}

func (m *mockRenderer) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.rendered...)
}
