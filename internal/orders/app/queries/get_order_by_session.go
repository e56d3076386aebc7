package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// GetOrderBySessionQuery looks an order up by its payment session id. Used
// by the confirmation page right after the provider redirects back, so the
// webhook may not have landed yet.
type GetOrderBySessionQuery struct {
	SessionID string
}

func (q GetOrderBySessionQuery) Validate() error {
	if strings.TrimSpace(q.SessionID) == "" {
		return apperrors.NewValidationError("session_id is required")
	}
	return nil
}

type GetOrderBySessionQueryHandler struct {
	repo ports.OrderRepository
}

func NewGetOrderBySessionQueryHandler(repo ports.OrderRepository) *GetOrderBySessionQueryHandler {
	return &GetOrderBySessionQueryHandler{repo: repo}
}

func (h *GetOrderBySessionQueryHandler) Handle(ctx context.Context, query GetOrderBySessionQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetBySessionID(ctx, query.SessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, apperrors.NewInternalError("failed to load order", err)
	}

	return order, nil
}
