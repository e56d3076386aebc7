package ports

import "context"

// EventBus defines the contract for publishing order lifecycle events.
// Publishing is best-effort relative to the state transition that precedes
// it: a failed publish is logged by the caller, never rolled back.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, orderID string) error
	PublishOrderPaid(ctx context.Context, orderID string) error
	PublishOrderDispatched(ctx context.Context, orderID string) error
	PublishOrderCancelled(ctx context.Context, orderID string) error
}
