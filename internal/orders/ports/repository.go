package ports

import (
	"context"
	"errors"
	"time"

	"github.com/uwearuk/storefront/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the
// application layer. Updates replace the whole document; flag transitions
// are enforced in the domain before the write.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	Update(ctx context.Context, order domain.Order) error
	AttachSession(ctx context.Context, orderID, sessionID string) error
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows list queries by owner, flags, and age.
type ListFilter struct {
	UserID         *string
	IsPaid         *bool
	IsDelivered    *bool
	IsMovedToSales *bool
	CreatedBefore  *time.Time
	Page           int
	PageSize       int
}

// ArchiveRepository is the cold store for finalized orders. Copy must be
// idempotent per order id so the archival job can be re-run after a crash
// without duplicating records.
type ArchiveRepository interface {
	Copy(ctx context.Context, order domain.Order, archivedAt time.Time) error
	Contains(ctx context.Context, orderID string) (bool, error)
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)
