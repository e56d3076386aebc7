package commands

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/uwearuk/storefront/internal/orders/metrics"
	"github.com/uwearuk/storefront/internal/telemetry"
)

type ObservableCheckoutHandler struct {
	handler CheckoutHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCheckoutHandler(handler CheckoutHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCheckoutHandler {
	return &ObservableCheckoutHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordCheckoutDuration(ctx, duration)
		o.metrics.RecordCheckout(ctx, success)
	}()

	o.logger.InfoContext(ctx, "processing checkout",
		"user_id", cmd.UserID,
		"item_count", len(cmd.Items),
	)

	result, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "checkout failed",
			"error", err,
			"user_id", cmd.UserID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", result.Order.ID),
		attribute.String("order.user_id", result.Order.UserID),
		attribute.Int64("order.total_price_cents", result.Order.TotalPriceCents),
		attribute.Int("order.item_count", len(result.Order.Items)),
	)

	o.logger.InfoContext(ctx, "checkout completed",
		"order_id", result.Order.ID,
		"user_id", result.Order.UserID,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return result, nil
}
