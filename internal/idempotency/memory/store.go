package memory

import (
	"context"
	"sync"

	"github.com/uwearuk/storefront/internal/orders/ports"
)

type storeKey struct {
	userID string
	key    string
}

// Store retains idempotency responses for replaying duplicate requests.
type Store struct {
	mu    sync.RWMutex
	items map[storeKey]ports.StoredResponse
}

// NewStore creates a new in-memory idempotency store.
func NewStore() *Store {
	return &Store{items: make(map[storeKey]ports.StoredResponse)}
}

// Get returns the stored response for a user's key if present.
func (s *Store) Get(_ context.Context, userID, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[storeKey{userID: userID, key: key}]
	if !ok {
		return nil, nil
	}
	copy := value
	return &copy, nil
}

// Save stores the response for a user's key. First write wins.
func (s *Store) Save(_ context.Context, userID, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := storeKey{userID: userID, key: key}
	if _, ok := s.items[id]; !ok {
		s.items[id] = response
	}
	return nil
}
