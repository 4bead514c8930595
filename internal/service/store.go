package service

import (
	"context"
	"sync"

	"github.com/ayo6706/retail-ledger/internal/ledger"
)

// RegistryStore defines the access contract services use for the registry.
type RegistryStore interface {
	Read(ctx context.Context, fn func(r *ledger.Registry) error) error
	RunInTx(ctx context.Context, fn func(r *ledger.Registry) error) error
}

// Store serializes access to a single in-memory registry.
type Store struct {
	mu       sync.RWMutex
	registry *ledger.Registry
}

// NewStore wraps r. A nil registry gets a fresh one with default settings.
func NewStore(r *ledger.Registry) *Store {
	if r == nil {
		r = ledger.NewRegistry()
	}
	return &Store{registry: r}
}

// Read runs fn under a shared lock. fn must not mutate the registry.
func (s *Store) Read(ctx context.Context, fn func(r *ledger.Registry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.registry)
}

// RunInTx runs fn with exclusive access. Ledger operations validate before
// they mutate, so a failing fn leaves no partial update from that operation.
func (s *Store) RunInTx(ctx context.Context, fn func(r *ledger.Registry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.registry)
}
