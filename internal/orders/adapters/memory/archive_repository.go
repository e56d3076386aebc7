package memory

import (
	"context"
	"sync"
	"time"

	"github.com/uwearuk/storefront/internal/orders/domain"
)

// ArchiveRepository keeps archived orders in memory for tests.
type ArchiveRepository struct {
	mu       sync.RWMutex
	archived map[string]domain.ArchivedOrder
}

func NewArchiveRepository() *ArchiveRepository {
	return &ArchiveRepository{archived: make(map[string]domain.ArchivedOrder)}
}

// Copy stores an archive record, keeping the first copy on repeat.
func (r *ArchiveRepository) Copy(_ context.Context, order domain.Order, archivedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.archived[order.ID]; ok {
		return nil
	}
	r.archived[order.ID] = domain.ArchivedOrder{Order: order, ArchivedAt: archivedAt}
	return nil
}

// Contains reports whether an order has been archived.
func (r *ArchiveRepository) Contains(_ context.Context, orderID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.archived[orderID]
	return ok, nil
}

// All returns every archived order, used by tests.
func (r *ArchiveRepository) All() []domain.ArchivedOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.ArchivedOrder, 0, len(r.archived))
	for _, archived := range r.archived {
		result = append(result, archived)
	}
	return result
}
