package domain_test

import (
	"testing"
	"time"

	"github.com/uwearuk/storefront/internal/orders/domain"
)

func validOrder() domain.Order {
	now := time.Now()
	return domain.Order{
		ID:     "test-id",
		UserID: "user-1",
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Name: "Linen Shirt", Quantity: 2, UnitPriceCents: 1000, Size: "M"},
		},
		ShippingAddress: domain.ShippingAddress{
			Street:     "10 Downing Street",
			City:       "London",
			PostalCode: "SW1A 2AA",
			Country:    "UK",
			Type:       domain.AddressShipping,
		},
		CustomerDetails: domain.CustomerDetails{
			FirstName: "Alice",
			LastName:  "Smith",
			Email:     "alice@example.com",
		},
		PaymentMethod:      domain.PaymentMethodCard,
		ShippingMethod:     domain.ShippingMethodRoyalMail,
		ItemsPriceCents:    2000,
		ShippingPriceCents: domain.ShippingPriceCents,
		TotalPriceCents:    2000 + domain.ShippingPriceCents,
		StripeSessionID:    domain.SessionPlaceholder,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *domain.Order)
		wantErr bool
	}{
		{
			name:    "valid order",
			mutate:  func(o *domain.Order) {},
			wantErr: false,
		},
		{
			name:    "no items",
			mutate:  func(o *domain.Order) { o.Items = nil },
			wantErr: true,
		},
		{
			name:    "item missing product id",
			mutate:  func(o *domain.Order) { o.Items[0].ProductID = "" },
			wantErr: true,
		},
		{
			name:    "item zero quantity",
			mutate:  func(o *domain.Order) { o.Items[0].Quantity = 0 },
			wantErr: true,
		},
		{
			name:    "item negative price",
			mutate:  func(o *domain.Order) { o.Items[0].UnitPriceCents = -1 },
			wantErr: true,
		},
		{
			name:    "missing address city",
			mutate:  func(o *domain.Order) { o.ShippingAddress.City = "" },
			wantErr: true,
		},
		{
			name:    "bad address type",
			mutate:  func(o *domain.Order) { o.ShippingAddress.Type = "Warehouse" },
			wantErr: true,
		},
		{
			name:    "missing customer first name",
			mutate:  func(o *domain.Order) { o.CustomerDetails.FirstName = "" },
			wantErr: true,
		},
		{
			name:    "whitespace only email",
			mutate:  func(o *domain.Order) { o.CustomerDetails.Email = "   " },
			wantErr: true,
		},
		{
			name:    "invalid email format",
			mutate:  func(o *domain.Order) { o.CustomerDetails.Email = "notanemail" },
			wantErr: true,
		},
		{
			name:    "invalid phone format",
			mutate:  func(o *domain.Order) { o.CustomerDetails.Phone = "12345" },
			wantErr: true,
		},
		{
			name:    "valid phone with country code",
			mutate:  func(o *domain.Order) { o.CustomerDetails.Phone = "+44 7911123456" },
			wantErr: false,
		},
		{
			name:    "unknown payment method",
			mutate:  func(o *domain.Order) { o.PaymentMethod = "Cheque" },
			wantErr: true,
		},
		{
			name:    "total does not add up",
			mutate:  func(o *domain.Order) { o.TotalPriceCents = 100 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)
			err := order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Order.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMarkPaid(t *testing.T) {
	order := validOrder()
	at := time.Now()

	if !order.MarkPaid(at) {
		t.Fatal("expected first MarkPaid to report a transition")
	}
	if !order.IsPaid {
		t.Error("expected order to be paid")
	}
	if order.PaidAt == nil || !order.PaidAt.Equal(at) {
		t.Errorf("expected PaidAt %v, got %v", at, order.PaidAt)
	}

	later := at.Add(time.Hour)
	if order.MarkPaid(later) {
		t.Error("expected second MarkPaid to be a no-op")
	}
	if !order.PaidAt.Equal(at) {
		t.Errorf("expected PaidAt to stay %v, got %v", at, order.PaidAt)
	}
}

func TestMarkDelivered(t *testing.T) {
	order := validOrder()
	at := time.Now()

	if !order.MarkDelivered(at) {
		t.Fatal("expected first MarkDelivered to report a transition")
	}
	if order.MarkDelivered(at.Add(time.Hour)) {
		t.Error("expected second MarkDelivered to be a no-op")
	}
	if order.DeliveredAt == nil || !order.DeliveredAt.Equal(at) {
		t.Errorf("expected DeliveredAt %v, got %v", at, order.DeliveredAt)
	}
}

func TestMarkMovedToSales(t *testing.T) {
	t.Run("requires delivery first", func(t *testing.T) {
		order := validOrder()
		if order.MarkMovedToSales(time.Now()) {
			t.Error("expected undelivered order to be rejected")
		}
	})

	t.Run("flips once on delivered order", func(t *testing.T) {
		order := validOrder()
		at := time.Now()
		order.MarkDelivered(at)

		if !order.MarkMovedToSales(at) {
			t.Fatal("expected first MarkMovedToSales to report a transition")
		}
		if order.MarkMovedToSales(at.Add(time.Hour)) {
			t.Error("expected second MarkMovedToSales to be a no-op")
		}
	})
}

func TestCancelable(t *testing.T) {
	order := validOrder()
	if !order.Cancelable() {
		t.Error("expected unpaid order to be cancelable")
	}

	order.MarkPaid(time.Now())
	if order.Cancelable() {
		t.Error("expected paid order to not be cancelable")
	}
}

func TestOwnedBy(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
		userID  string
		caller  string
		want    bool
	}{
		{"owner matches", "o1", "user-1", "user-1", true},
		{"different user", "o1", "user-1", "user-2", false},
		{"guest order has no owner", "o1", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := domain.Order{ID: tt.orderID, UserID: tt.userID}
			if got := order.OwnedBy(tt.caller); got != tt.want {
				t.Errorf("Order.OwnedBy(%q) = %v, want %v", tt.caller, got, tt.want)
			}
		})
	}
}
