package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copied := order
	return &copied, nil
}

// GetBySessionID fetches the order attached to a payment session.
func (r *Repository) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.StripeSessionID == sessionID {
			copied := order
			return &copied, nil
		}
	}
	return nil, ports.ErrNotFound
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.IsPaid != nil && order.IsPaid != *filter.IsPaid {
			continue
		}
		if filter.IsDelivered != nil && order.IsDelivered != *filter.IsDelivered {
			continue
		}
		if filter.IsMovedToSales != nil && order.IsMovedToSales != *filter.IsMovedToSales {
			continue
		}
		if filter.CreatedBefore != nil && !order.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = len(result)
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Update replaces a stored order.
func (r *Repository) Update(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return ports.ErrNotFound
	}
	r.orders[order.ID] = order
	return nil
}

// AttachSession replaces the placeholder session id with the provider's.
func (r *Repository) AttachSession(_ context.Context, orderID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	order.StripeSessionID = sessionID
	order.UpdatedAt = time.Now().UTC()
	r.orders[orderID] = order
	return nil
}

// Delete removes an order.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}
