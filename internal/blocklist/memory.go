package blocklist

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is an in-process Registry used by tests and local runs
// without redis. Entries expire lazily on lookup.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemory() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]time.Time)}
}

func (m *MemoryRegistry) Add(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryRegistry) Contains(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}
