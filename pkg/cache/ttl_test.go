package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_GetSet(t *testing.T) {
	clock := newFakeClock()
	s := New[string](5*time.Minute, clock.Now)

	if _, ok := s.Get("employee:1"); ok {
		t.Fatal("expected miss on empty store")
	}

	s.Set("employee:1", "ana")

	got, ok := s.Get("employee:1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "ana" {
		t.Errorf("got %q, want %q", got, "ana")
	}
}

func TestStore_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantHit bool
	}{
		{"just_set", 0, true},
		{"within_ttl", 4 * time.Minute, true},
		{"one_tick_before_expiry", 5*time.Minute - time.Second, true},
		{"exactly_at_expiry", 5 * time.Minute, false},
		{"after_expiry", 6 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			s := New[int](5*time.Minute, clock.Now)
			s.Set("k", 42)
			clock.Advance(tt.advance)

			_, ok := s.Get("k")
			if ok != tt.wantHit {
				t.Errorf("hit = %v, want %v", ok, tt.wantHit)
			}
		})
	}
}

func TestStore_SetRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	s := New[int](5*time.Minute, clock.Now)

	s.Set("k", 1)
	clock.Advance(4 * time.Minute)
	s.Set("k", 2)
	clock.Advance(4 * time.Minute)

	got, ok := s.Get("k")
	if !ok {
		t.Fatal("expected hit after refresh")
	}
	if got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestStore_Invalidate(t *testing.T) {
	s := New[string](0, nil)
	s.Set("k", "v")
	s.Invalidate("k")

	if _, ok := s.Get("k"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestStore_ExpiredEntryIsDropped(t *testing.T) {
	clock := newFakeClock()
	s := New[int](time.Minute, clock.Now)
	s.Set("k", 1)
	clock.Advance(2 * time.Minute)

	s.Get("k")

	if s.Len() != 0 {
		t.Errorf("expected expired entry to be dropped, have %d entries", s.Len())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int](time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			s.Set(key, n)
		}(i)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			s.Get(key)
		}(i)
	}
	wg.Wait()
}
