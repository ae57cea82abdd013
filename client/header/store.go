// Package header holds the default request headers of a client and the
// helpers that move headers between requests, responses and plain maps.
package header

import (
	"maps"
	"net/http"
	"strings"
	"sync"
)

// Store is a concurrency-safe set of default request headers.
// Keys are stored in canonical form, so "x-test" and "X-Test" are the same entry.
type Store struct {
	mu      sync.Mutex
	headers map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{headers: make(map[string]string)}
}

// Add inserts key, overwriting any existing value.
func (s *Store) Add(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.headers[http.CanonicalHeaderKey(key)] = value
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.headers, http.CanonicalHeaderKey(key))
}

// Snapshot returns a copy of the current headers. Later changes to the
// Store do not affect the returned Snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.headers)
}

// Len returns the number of stored headers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.headers)
}

// Snapshot is a point-in-time copy of a Store, owned by one request.
type Snapshot map[string]string

// Apply sets every header of the snapshot on h.
func (s Snapshot) Apply(h http.Header) {
	for k, v := range s {
		h.Set(k, v)
	}
}

// Merge flattens h into one value per name, joining repeated values
// with ", " in the order they were received.
func Merge(h http.Header) map[string]string {
	merged := make(map[string]string, len(h))
	for k, v := range h {
		merged[k] = strings.Join(v, ", ")
	}
	return merged
}
