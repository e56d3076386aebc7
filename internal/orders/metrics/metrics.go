package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	checkoutsTotal         metric.Int64Counter
	checkoutDuration       metric.Float64Histogram
	paymentsConfirmedTotal metric.Int64Counter
	ordersCancelledTotal   metric.Int64Counter
	ordersMovedTotal       metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.checkoutsTotal, err = meter.Int64Counter(
		"checkouts_total",
		metric.WithDescription("Total number of checkout attempts"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkouts_total counter: %w", err)
	}

	m.checkoutDuration, err = meter.Float64Histogram(
		"checkout_duration_seconds",
		metric.WithDescription("Duration of checkout operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_duration histogram: %w", err)
	}

	m.paymentsConfirmedTotal, err = meter.Int64Counter(
		"payments_confirmed_total",
		metric.WithDescription("Total number of payment confirmations applied"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments_confirmed_total counter: %w", err)
	}

	m.ordersCancelledTotal, err = meter.Int64Counter(
		"orders_cancelled_total",
		metric.WithDescription("Total number of orders cancelled"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_cancelled_total counter: %w", err)
	}

	m.ordersMovedTotal, err = meter.Int64Counter(
		"orders_moved_to_sales_total",
		metric.WithDescription("Total number of orders moved to sales"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_moved_to_sales_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordCheckout(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.checkoutsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordCheckoutDuration(ctx context.Context, durationSeconds float64) {
	m.checkoutDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordPaymentConfirmed(ctx context.Context) {
	m.paymentsConfirmedTotal.Add(ctx, 1)
}

func (m *Metrics) RecordOrderCancelled(ctx context.Context) {
	m.ordersCancelledTotal.Add(ctx, 1)
}

func (m *Metrics) RecordOrdersMoved(ctx context.Context, count int) {
	m.ordersMovedTotal.Add(ctx, int64(count))
}
