package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// GetOrderQuery represents a request to retrieve an order by its ID on
// behalf of a caller. Admins can read any order; customers only their own.
type GetOrderQuery struct {
	OrderID     string
	CallerID    string
	CallerAdmin bool
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderID) == "" {
		return apperrors.NewValidationError("order_id is required")
	}
	return nil
}

// GetOrderQueryHandler executes GetOrderQuery and returns the order if found.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

// Handle executes the query and retrieves the order.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, query.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, apperrors.NewInternalError("failed to load order", err)
	}

	if !query.CallerAdmin && order.UserID != "" && !order.OwnedBy(query.CallerID) {
		return nil, apperrors.NewForbiddenError("not authorized to view this order")
	}

	return order, nil
}
