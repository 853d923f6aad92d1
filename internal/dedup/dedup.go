// Package dedup remembers message IDs so a redelivered message is handled once.
package dedup

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a message ID is remembered.
const DefaultTTL = 10 * time.Minute

// Store records message IDs.
type Store interface {
	// Seen marks id as handled and reports whether it was already marked
	// within the TTL.
	Seen(ctx context.Context, id string) (bool, error)
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
	sweepAt time.Time
}

// NewMemory returns an in-process store. A non-positive ttl selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Seen implements Store.
func (m *Memory) Seen(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.After(m.sweepAt) {
		m.sweep(now)
		m.sweepAt = now.Add(m.ttl)
	}

	if expires, ok := m.entries[id]; ok && now.Before(expires) {
		return true, nil
	}
	m.entries[id] = now.Add(m.ttl)
	return false, nil
}

// sweep drops expired entries. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	for id, expires := range m.entries {
		if !now.Before(expires) {
			delete(m.entries, id)
		}
	}
}

// Len returns the number of remembered IDs, expired ones included until the
// next sweep.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
