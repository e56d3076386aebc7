package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/uwearuk/storefront/internal/notifications"
	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// ConfirmPaymentCommand marks the order behind a completed payment session
// as paid. Delivered by the provider webhook, possibly more than once.
type ConfirmPaymentCommand struct {
	SessionID string
}

type ConfirmPaymentCommandHandler struct {
	orders     ports.OrderRepository
	events     ports.EventBus
	dispatcher notifications.Dispatcher
	logger     *slog.Logger
}

func NewConfirmPaymentCommandHandler(
	orders ports.OrderRepository,
	events ports.EventBus,
	dispatcher notifications.Dispatcher,
	logger *slog.Logger,
) *ConfirmPaymentCommandHandler {
	return &ConfirmPaymentCommandHandler{
		orders:     orders,
		events:     events,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle transitions the order to paid exactly once. An unknown session id
// and a redelivered event both return nil so the webhook is always
// acknowledged; only persistence failures surface, making the provider
// retry.
func (h *ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*domain.Order, error) {
	order, err := h.orders.GetBySessionID(ctx, cmd.SessionID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.logger.WarnContext(ctx, "order not found for payment event", "session_id", cmd.SessionID)
			return nil, nil
		}
		return nil, apperrors.NewInternalError("failed to load order", err)
	}

	if !order.MarkPaid(time.Now().UTC()) {
		return order, nil
	}

	if err := h.orders.Update(ctx, *order); err != nil {
		return nil, apperrors.NewInternalError("failed to update order", err)
	}

	h.logger.InfoContext(ctx, "order payment confirmed",
		"order_id", order.ID, "session_id", cmd.SessionID)

	if err := h.events.PublishOrderPaid(ctx, order.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to publish order paid event", "error", err, "order_id", order.ID)
	}

	h.sendConfirmationEmail(ctx, *order)

	return order, nil
}

func (h *ConfirmPaymentCommandHandler) sendConfirmationEmail(ctx context.Context, order domain.Order) {
	body, err := notifications.ConfirmationBody(order)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render confirmation email", "error", err, "order_id", order.ID)
		return
	}

	err = h.dispatcher.Send(ctx, order.CustomerDetails.Email, notifications.ConfirmationSubject(order), body)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to send order confirmation email",
			"error", err, "order_id", order.ID, "email", order.CustomerDetails.Email)
		return
	}

	h.logger.InfoContext(ctx, "order confirmation email sent",
		"order_id", order.ID, "email", order.CustomerDetails.Email)
}
