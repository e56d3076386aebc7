package memory

import (
	"context"
	"sync"

	"github.com/uwearuk/storefront/internal/cart"
)

// Store is an in-memory cart store for local development and tests.
type Store struct {
	mu    sync.RWMutex
	carts map[string][]cart.Item
}

// NewStore constructs an empty in-memory cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string][]cart.Item)}
}

func (s *Store) Get(_ context.Context, userID string) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	copied := make([]cart.Item, len(items))
	copy(copied, items)
	return copied, nil
}

func (s *Store) Set(_ context.Context, userID string, items []cart.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]cart.Item, len(items))
	copy(copied, items)
	s.carts[userID] = copied
	return nil
}

func (s *Store) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
