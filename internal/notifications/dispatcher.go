package notifications

import "context"

// Dispatcher sends transactional messages to customers. Dispatch failures
// are never fatal to callers in the order workflow: the state transition is
// already durable by the time a message goes out, so failures are logged
// and swallowed.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
