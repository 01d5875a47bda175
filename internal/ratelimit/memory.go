package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryEntry tracks attempt counts for a single key within a time window.
type memoryEntry struct {
	count       int
	windowStart time.Time
}

// MemoryStore is an in-process fixed-window counter store. Counters are
// local to the process, so with multiple replicas each replica counts
// independently -- use RedisStore when that matters.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryStore creates an in-memory store and starts a background janitor
// that evicts entries whose window elapsed long ago, bounding memory under
// churning client IPs.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}

	go s.janitor()

	return s
}

// Incr implements Store. The whole read-reset-increment sequence runs under
// the mutex so concurrent attempts against one key never undercount.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists || now.Sub(entry.windowStart) > window {
		entry = &memoryEntry{windowStart: now}
		s.entries[key] = entry
	}

	entry.count++
	return entry.count, entry.windowStart.Add(window), nil
}

// janitor periodically deletes entries that haven't been touched for well
// past any plausible window, so one-off clients don't accumulate forever.
func (s *MemoryStore) janitor() {
	const retention = 10 * time.Minute

	for {
		time.Sleep(time.Minute)

		s.mu.Lock()
		now := s.now()
		for key, entry := range s.entries {
			if now.Sub(entry.windowStart) > retention {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}
