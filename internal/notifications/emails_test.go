package notifications

import (
	"strings"
	"testing"

	"github.com/uwearuk/storefront/internal/orders/domain"
)

func TestConfirmationBody(t *testing.T) {
	order := sampleOrder()

	body, err := ConfirmationBody(order)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{
		"Thank You for Your Order, Alice!",
		"order #ord-1 has been successfully paid",
		"Linen Shirt (M)",
		"£20.00",                    // line cost, 2 x 10.00
		"Subtotal: £20.00",
		"Shipping: £2.99",
		"Total: £22.99",
		"12 High Street, London",
		"SW1A 1AA, UK (Shipping)",
		"support@uwearuk.com",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("confirmation body missing %q", want)
		}
	}
}

func TestDispatchedBody(t *testing.T) {
	order := sampleOrder()

	body, err := DispatchedBody(order)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{
		"Order #ord-1 Has Been Dispatched!",
		"Royal Mail Non-Trackable",
		"Linen Shirt (M) - Quantity: 2",
		"12 High Street, London",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dispatched body missing %q", want)
		}
	}
}

func TestSubjects(t *testing.T) {
	order := sampleOrder()

	if got := ConfirmationSubject(order); got != "UWEAR Order Confirmation #ord-1" {
		t.Errorf("unexpected confirmation subject %q", got)
	}
	if got := DispatchedSubject(order); got != "Your UWEAR Order #ord-1 Has Been Dispatched!" {
		t.Errorf("unexpected dispatched subject %q", got)
	}
}

func sampleOrder() domain.Order {
	return domain.Order{
		ID:     "ord-1",
		UserID: "user-1",
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Name: "Linen Shirt", Quantity: 2, UnitPriceCents: 1000, Size: "M", Image: "https://cdn.uwearuk.com/shirt.jpg"},
		},
		ShippingAddress: domain.ShippingAddress{
			Type:       domain.AddressShipping,
			Street:     "12 High Street",
			City:       "London",
			PostalCode: "SW1A 1AA",
			Country:    "UK",
		},
		CustomerDetails: domain.CustomerDetails{
			FirstName: "Alice",
			LastName:  "Smith",
			Email:     "alice@example.com",
			Phone:     "07700900000",
		},
		PaymentMethod:      domain.PaymentMethodCard,
		ShippingMethod:     domain.ShippingMethodRoyalMail,
		ItemsPriceCents:    2000,
		ShippingPriceCents: 299,
		TotalPriceCents:    2299,
	}
}
