// Package cache memoizes whole extraction responses for the lifetime of the
// process.
package cache

import (
	"encoding/json"
	"sort"
	"sync"
)

// Store is a concurrency-safe map from request key to response. Values are
// cloned on the way in and on the way out, so callers never share memory
// with the cache. There is no eviction; Clear empties it.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	clone   func(V) V
}

// New returns an empty Store. clone must return a deep copy of its input.
func New[V any](clone func(V) V) *Store[V] {
	return &Store[V]{
		entries: make(map[string]V),
		clone:   clone,
	}
}

// Get returns a copy of the value stored under key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		var zero V

		return zero, false
	}

	return s.clone(v), true
}

// Put stores a copy of v under key, replacing any previous value.
func (s *Store[V]) Put(key string, v V) {
	v = s.clone(v)

	s.mu.Lock()
	s.entries[key] = v
	s.mu.Unlock()
}

// Clear drops every entry.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]V)
	s.mu.Unlock()
}

// Len reports the number of cached entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

type keyParts struct {
	URLs   []string `json:"urls"`
	Filter string   `json:"filter"`
}

// Key derives the cache key for a normalized seed set and filter mode.
// Input order and duplicates do not affect the result.
func Key(urls []string, filter string) string {
	distinct := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))

	for _, u := range urls {
		if seen[u] {
			continue
		}

		seen[u] = true
		distinct = append(distinct, u)
	}

	sort.Strings(distinct)

	// Marshalling a struct of strings cannot fail.
	b, _ := json.Marshal(keyParts{URLs: distinct, Filter: filter})

	return string(b)
}
