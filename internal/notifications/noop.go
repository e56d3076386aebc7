package notifications

import "context"

// NoopDispatcher drops every message. Used when no mail relay is configured.
type NoopDispatcher struct{}

func (NoopDispatcher) Send(context.Context, string, string, string) error {
	return nil
}
