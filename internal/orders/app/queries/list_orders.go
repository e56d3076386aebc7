package queries

import (
	"context"

	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// ListUserOrdersQuery returns the caller's own orders, newest first.
type ListUserOrdersQuery struct {
	UserID string
}

type ListUserOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListUserOrdersQueryHandler(repo ports.OrderRepository) *ListUserOrdersQueryHandler {
	return &ListUserOrdersQueryHandler{repo: repo}
}

func (h *ListUserOrdersQueryHandler) Handle(ctx context.Context, query ListUserOrdersQuery) ([]domain.Order, error) {
	if query.UserID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}

	orders, err := h.repo.List(ctx, ports.ListFilter{UserID: &query.UserID})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders", err)
	}

	return orders, nil
}

// ListAllOrdersQuery is the admin listing. It returns paid orders only,
// which is what the back office works from.
type ListAllOrdersQuery struct {
	Page     int
	PageSize int
}

type ListAllOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListAllOrdersQueryHandler(repo ports.OrderRepository) *ListAllOrdersQueryHandler {
	return &ListAllOrdersQueryHandler{repo: repo}
}

func (h *ListAllOrdersQueryHandler) Handle(ctx context.Context, query ListAllOrdersQuery) ([]domain.Order, error) {
	paid := true
	filter := ports.ListFilter{
		IsPaid:   &paid,
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	orders, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders", err)
	}

	return orders, nil
}
