package cart

import (
	"context"
	"errors"
)

// Item is one line in a user's active cart.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// Store holds each user's active cart. Checkout reads the cart through the
// request payload and clears it once the order is placed; a clear failure is
// logged, never fatal to the order.
type Store interface {
	Get(ctx context.Context, userID string) ([]Item, error)
	Set(ctx context.Context, userID string, items []Item) error
	Clear(ctx context.Context, userID string) error
}

// ErrNotFound is returned when the user has no stored cart.
var ErrNotFound = errors.New("cart not found")
