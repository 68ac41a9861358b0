package cart

import (
	"context"
	"sync"
)

// Storage persists a visitor's full cart snapshot. Every mutation in the
// service is a load-mutate-save round trip against this interface, so any
// number of tabs or devices sharing an owner key converge on the same cart.
type Storage interface {
	Load(ctx context.Context, ownerKey string) ([]LineItem, error)
	Save(ctx context.Context, ownerKey string, items []LineItem) error
}

type memoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]LineItem
}

// NewMemoryStorage builds an in-process cart storage for tests and local
// development without redis or postgres.
func NewMemoryStorage() Storage {
	return &memoryStorage{carts: make(map[string][]LineItem)}
}

func (s *memoryStorage) Load(_ context.Context, ownerKey string) ([]LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.carts[ownerKey]
	if !ok {
		return nil, nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *memoryStorage) Save(_ context.Context, ownerKey string, items []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) == 0 {
		delete(s.carts, ownerKey)
		return nil
	}
	stored := make([]LineItem, len(items))
	copy(stored, items)
	s.carts[ownerKey] = stored
	return nil
}
