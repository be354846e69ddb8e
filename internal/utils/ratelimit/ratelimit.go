// Package ratelimit is a fixed-window counter used to throttle admin
// mutations per actor and scope. The store is an interface so a shared
// backend (e.g. Redis) can replace the per-process memory store in a
// multi-instance deployment; the in-memory store under-enforces across
// instances.
package ratelimit

import (
	"sync"
	"time"
)

type Store interface {
	// Incr bumps the counter for key inside the current fixed window and
	// returns the post-increment count.
	Incr(key string, window time.Duration) (int, error)
}

type Limiter struct {
	store Store
}

func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow consumes one slot for actor+scope and reports whether the caller is
// still inside the limit for the window.
func (l *Limiter) Allow(actor, scope string, limit int, window time.Duration) (bool, error) {
	count, err := l.store.Incr(actor+":"+scope, window)
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}

type memoryEntry struct {
	count       int
	windowStart int64
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		Now:     time.Now,
	}
}

func (s *MemoryStore) Incr(key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now().UnixNano()
	windowStart := now - now%int64(window)

	e, ok := s.entries[key]
	if !ok || e.windowStart != windowStart {
		e = memoryEntry{windowStart: windowStart}
	}
	e.count++
	s.entries[key] = e
	return e.count, nil
}
