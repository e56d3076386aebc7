package ports

import (
	"context"
	"errors"

	"github.com/uwearuk/storefront/internal/catalog/domain"
)

// ProductRepository exposes the catalog operations the order workflow needs.
//
// ReserveStock must be an atomic conditional decrement at the store: it
// succeeds only when the product has at least quantity units left, so two
// concurrent checkouts can never both pass a separate stock check and
// oversell.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}

var (
	// ErrNotFound is returned when the requested product does not exist.
	ErrNotFound = errors.New("product not found")

	// ErrInsufficientStock is returned when a reservation asks for more
	// units than the product has left.
	ErrInsufficientStock = errors.New("insufficient stock")
)
