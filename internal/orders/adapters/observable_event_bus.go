package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/uwearuk/storefront/internal/kafka"
	"github.com/uwearuk/storefront/internal/orders/ports"
	"github.com/uwearuk/storefront/internal/telemetry"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return e.publish(ctx, "EventBus.PublishOrderCreated", kafka.TopicOrderCreated, orderID, e.bus.PublishOrderCreated)
}

func (e *ObservableEventBus) PublishOrderPaid(ctx context.Context, orderID string) error {
	return e.publish(ctx, "EventBus.PublishOrderPaid", kafka.TopicOrderPaid, orderID, e.bus.PublishOrderPaid)
}

func (e *ObservableEventBus) PublishOrderDispatched(ctx context.Context, orderID string) error {
	return e.publish(ctx, "EventBus.PublishOrderDispatched", kafka.TopicOrderDispatched, orderID, e.bus.PublishOrderDispatched)
}

func (e *ObservableEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return e.publish(ctx, "EventBus.PublishOrderCancelled", kafka.TopicOrderCancelled, orderID, e.bus.PublishOrderCancelled)
}

func (e *ObservableEventBus) publish(
	ctx context.Context,
	spanName, topic, orderID string,
	op func(context.Context, string) error,
) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", topic),
		attribute.String("topic", topic),
	)

	start := time.Now()
	err := op(ctx, orderID)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, topic, duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
