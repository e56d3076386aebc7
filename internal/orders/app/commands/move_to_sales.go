package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uwearuk/storefront/internal/notifications"
	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// MoveToSalesCommand flags a batch of delivered orders as moved to the
// sales ledger.
type MoveToSalesCommand struct {
	OrderIDs []string
}

// Validate rejects the whole batch when any id is malformed, before any
// order is touched.
func (c MoveToSalesCommand) Validate() error {
	if len(c.OrderIDs) == 0 {
		return apperrors.NewValidationError("no order IDs provided")
	}

	var invalid []string
	for _, id := range c.OrderIDs {
		if _, err := uuid.Parse(id); err != nil {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return apperrors.NewValidationError(fmt.Sprintf("invalid order IDs: %s", strings.Join(invalid, ", ")))
	}

	return nil
}

// MoveToSalesResult reports how many orders actually changed state.
type MoveToSalesResult struct {
	ModifiedCount int
}

type MoveToSalesCommandHandler struct {
	orders     ports.OrderRepository
	events     ports.EventBus
	dispatcher notifications.Dispatcher
	logger     *slog.Logger
}

func NewMoveToSalesCommandHandler(
	orders ports.OrderRepository,
	events ports.EventBus,
	dispatcher notifications.Dispatcher,
	logger *slog.Logger,
) *MoveToSalesCommandHandler {
	return &MoveToSalesCommandHandler{
		orders:     orders,
		events:     events,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle moves each delivered, not-yet-moved order in the batch. Unknown
// ids, undelivered orders, and orders already moved are skipped without
// failing the batch, so re-running the same batch reports zero modified.
// The dispatched notice and event go only to orders whose flag flipped
// this run.
func (h *MoveToSalesCommandHandler) Handle(ctx context.Context, cmd MoveToSalesCommand) (*MoveToSalesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	modified := 0

	for _, id := range cmd.OrderIDs {
		order, err := h.orders.GetByID(ctx, id)
		if err != nil {
			h.logger.WarnContext(ctx, "order skipped during move to sales", "error", err, "order_id", id)
			continue
		}

		if !order.MarkMovedToSales(now) {
			continue
		}

		if err := h.orders.Update(ctx, *order); err != nil {
			return nil, apperrors.NewInternalError("failed to update order", err)
		}
		modified++

		if err := h.events.PublishOrderDispatched(ctx, order.ID); err != nil {
			h.logger.WarnContext(ctx, "failed to publish order dispatched event", "error", err, "order_id", order.ID)
		}
		h.sendDispatchedEmail(ctx, *order)
	}

	h.logger.InfoContext(ctx, "orders moved to sales",
		"requested", len(cmd.OrderIDs), "modified", modified)

	return &MoveToSalesResult{ModifiedCount: modified}, nil
}

func (h *MoveToSalesCommandHandler) sendDispatchedEmail(ctx context.Context, order domain.Order) {
	body, err := notifications.DispatchedBody(order)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render dispatched email", "error", err, "order_id", order.ID)
		return
	}

	err = h.dispatcher.Send(ctx, order.CustomerDetails.Email, notifications.DispatchedSubject(order), body)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to send order dispatched email",
			"error", err, "order_id", order.ID, "email", order.CustomerDetails.Email)
		return
	}

	h.logger.InfoContext(ctx, "order dispatched email sent",
		"order_id", order.ID, "email", order.CustomerDetails.Email)
}
