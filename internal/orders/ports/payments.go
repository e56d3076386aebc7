package ports

import (
	"context"
	"errors"
)

// SessionLineItem is one purchasable line on the provider-hosted payment page.
type SessionLineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

// CreateSessionInput carries everything the provider needs to host a
// payment page for one order.
type CreateSessionInput struct {
	LineItems     []SessionLineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// PaymentSession identifies a provider-hosted transaction the customer
// completes to pay.
type PaymentSession struct {
	ID          string
	RedirectURL string
}

// PaymentEvent is a verified, parsed webhook notification.
type PaymentEvent struct {
	Type      string
	SessionID string
}

// EventCheckoutCompleted is the provider event that confirms payment.
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentGateway abstracts the payment provider. CreateSession provisions a
// hosted payment page; VerifyWebhook authenticates and parses an
// asynchronous provider callback before any state may change.
type PaymentGateway interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*PaymentSession, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*PaymentEvent, error)
}

var (
	// ErrProvider is returned when session creation fails upstream.
	ErrProvider = errors.New("payment provider failure")

	// ErrSignatureInvalid is returned when a webhook payload fails
	// signature verification.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
)
