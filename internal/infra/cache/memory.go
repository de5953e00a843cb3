package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arklim/riskdash-client/internal/core/port"
)

// ErrMiss reports a cache lookup that found nothing usable.
var ErrMiss = errors.New("cache: miss")

var _ port.DataCache = (*Memory)(nil)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is the in-process DataCache used when no Redis backend is
// configured. Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (m *Memory) WithClock(clock func() time.Time) {
	if clock != nil {
		m.now = clock
	}
}

// Get returns the cached value for key or ErrMiss.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", ErrMiss
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", ErrMiss
	}
	return entry.value, nil
}

// Set stores value under key. A non-positive ttl keeps the entry until
// invalidation.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes a single entry.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// InvalidateAll wipes every entry. Logout drives this.
func (m *Memory) InvalidateAll(context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
