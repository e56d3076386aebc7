package stripepay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/uwearuk/storefront/internal/orders/ports"
)

// Gateway drives Stripe Checkout. Hosted sessions carry the order's line
// items plus a shipping line; the webhook secret authenticates provider
// callbacks.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// NewGateway configures the Stripe client with the account's secret key.
func NewGateway(secretKey, webhookSecret string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Gateway{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

func (g *Gateway) CreateSession(ctx context.Context, input ports.CreateSessionInput) (*ports.PaymentSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyGBP)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmountCents),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(input.SuccessURL),
		CancelURL:          stripe.String(input.CancelURL),
		CustomerEmail:      stripe.String(input.CustomerEmail),
	}
	params.Context = ctx
	for key, value := range input.Metadata {
		params.AddMetadata(key, value)
	}

	created, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrProvider, err)
	}

	return &ports.PaymentSession{
		ID:          created.ID,
		RedirectURL: created.URL,
	}, nil
}

func (g *Gateway) VerifyWebhook(payload []byte, signatureHeader string) (*ports.PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrSignatureInvalid, err)
	}

	parsed := &ports.PaymentEvent{Type: string(event.Type)}

	if parsed.Type == ports.EventCheckoutCompleted {
		var completed stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &completed); err != nil {
			return nil, fmt.Errorf("parse checkout session: %w", err)
		}
		parsed.SessionID = completed.ID
	}

	return parsed, nil
}
