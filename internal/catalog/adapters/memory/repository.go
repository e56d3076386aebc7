package memory

import (
	"context"
	"sync"
	"time"

	"github.com/uwearuk/storefront/internal/catalog/domain"
	"github.com/uwearuk/storefront/internal/catalog/ports"
)

// Repository provides an in-memory catalog useful for local development and
// tests. Reservations hold the lock across check and decrement, matching the
// atomicity the postgres adapter gets from its conditional UPDATE.
type Repository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

// Put seeds or replaces a product.
func (r *Repository) Put(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

// GetByID fetches a single product by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := product
	return &copy, nil
}

// ReserveStock atomically decrements stock when enough units remain.
func (r *Repository) ReserveStock(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return ports.ErrNotFound
	}
	if product.CountInStock < quantity {
		return ports.ErrInsufficientStock
	}

	product.CountInStock -= quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[productID] = product
	return nil
}

// ReleaseStock returns reserved units to the product.
func (r *Repository) ReleaseStock(_ context.Context, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return ports.ErrNotFound
	}

	product.CountInStock += quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[productID] = product
	return nil
}
