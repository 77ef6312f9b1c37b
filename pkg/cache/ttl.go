package cache

import (
	"sync"
	"time"
)

const DefaultTTL = 300 * time.Second

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a TTL-expiring key/value cache. A single mutex guards the whole
// store: key space is bounded by active employees and organizations, so
// per-key locking and LRU eviction are not needed at this scale.
type Store[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

// New creates a Store with the given TTL. A non-positive ttl falls back to
// DefaultTTL. now is injectable so tests can use a fake clock; nil means
// time.Now.
func New[V any](ttl time.Duration, now func() time.Time) *Store[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value. A read at or after the entry's expiry is a
// miss; the stale entry is dropped on the way out.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, still := s.entries[key]; still && !s.now().Before(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
}

func (s *Store[V]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports live entries, counting not-yet-collected expired ones.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
