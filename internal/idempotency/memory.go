package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	payload []byte
	expires time.Time
}

// memorySweepInterval is the minimum gap between full scans for expired keys.
const memorySweepInterval = time.Minute

// MemoryBackend keeps envelopes in process memory. Expired keys are dropped
// on access, and Reserve sweeps the whole map at most once per
// memorySweepInterval so keys that are never looked up again do not pile up.
type MemoryBackend struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.live(key)
	if !ok {
		return nil, ErrNotFound
	}
	return item.payload, nil
}

func (m *MemoryBackend) Reserve(ctx context.Context, key string, payload []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.items[key] = memoryItem{payload: payload, expires: m.now().Add(ttl)}
	return true, nil
}

func (m *MemoryBackend) Replace(ctx context.Context, key string, payload []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); !ok {
		return false, nil
	}
	m.items[key] = memoryItem{payload: payload, expires: m.now().Add(ttl)}
	return true, nil
}

func (m *MemoryBackend) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// live must be called with mu held.
func (m *MemoryBackend) live(key string) (memoryItem, bool) {
	item, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !m.now().Before(item.expires) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return item, true
}

// sweep must be called with mu held.
func (m *MemoryBackend) sweep() {
	now := m.now()
	if now.Before(m.nextSweep) {
		return
	}
	m.nextSweep = now.Add(memorySweepInterval)
	for key, item := range m.items {
		if !now.Before(item.expires) {
			delete(m.items, key)
		}
	}
}

func (m *MemoryBackend) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
