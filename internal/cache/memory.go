package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	body    []byte
	expires time.Time
}

// MemoryViews keeps rendered views in process memory.
type MemoryViews struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	gens    map[string]uint64
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryViews creates a MemoryViews whose entries live for ttl.
func NewMemoryViews(ttl time.Duration) *MemoryViews {
	return &MemoryViews{
		entries: make(map[string]memoryEntry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached body for path.
func (m *MemoryViews) Get(_ context.Context, path string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[path]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expires) {
		return nil, false, nil
	}
	return e.body, true, nil
}

// Generation returns how many times path has been revalidated.
func (m *MemoryViews) Generation(_ context.Context, path string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[path], nil
}

// SetIfCurrent stores body for path if path is still at generation gen.
func (m *MemoryViews) SetIfCurrent(_ context.Context, path string, gen uint64, body []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[path] != gen {
		return false, nil
	}
	m.entries[path] = memoryEntry{body: append([]byte(nil), body...), expires: m.now().Add(m.ttl)}
	return true, nil
}

// Revalidate drops the given paths and advances their generations.
func (m *MemoryViews) Revalidate(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range paths {
		delete(m.entries, p)
		m.gens[p]++
	}
	return nil
}
