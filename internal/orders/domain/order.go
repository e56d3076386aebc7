package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// PaymentMethodCard is the single payment method the storefront accepts.
const PaymentMethodCard = "Card"

// ShippingMethodRoyalMail is the fixed shipping method; its price is set by
// the server, never by the client.
const ShippingMethodRoyalMail = "RoyalMail_NonTrackable"

// ShippingPriceCents is the server-fixed shipping price in pence.
const ShippingPriceCents int64 = 299

// SessionPlaceholder marks an order whose payment session has not been
// attached yet. An order carrying it is inside the create window and must
// either receive a real session id or be deleted.
const SessionPlaceholder = "temp"

// AddressType distinguishes shipping from billing addresses.
type AddressType string

const (
	AddressShipping AddressType = "Shipping"
	AddressBilling  AddressType = "Billing"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^(\+\d{1,3}[- ]?)?\d{10}$`)
)

// OrderItem is a frozen snapshot of catalog data taken at order time.
// Later catalog edits never mutate historical orders.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Size           string `json:"size"`
	Image          string `json:"image,omitempty"`
	SerialNumber   string `json:"serial_number,omitempty"`
}

// ShippingAddress is validated at order creation, immutable afterward
// except via explicit admin edit.
type ShippingAddress struct {
	Street     string      `json:"street"`
	City       string      `json:"city"`
	PostalCode string      `json:"postal_code"`
	Country    string      `json:"country"`
	Type       AddressType `json:"type"`
}

// Validate checks address completeness and type.
func (a ShippingAddress) Validate() error {
	if a.Street == "" || a.City == "" || a.PostalCode == "" || a.Country == "" || a.Type == "" {
		return errors.New("all shipping address fields are required")
	}
	if a.Type != AddressShipping && a.Type != AddressBilling {
		return errors.New("shipping address type must be Shipping or Billing")
	}
	return nil
}

// CustomerDetails carries the contact information used for order notifications.
type CustomerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Validate checks required fields and contact formats.
func (c CustomerDetails) Validate() error {
	if c.FirstName == "" || c.LastName == "" || strings.TrimSpace(c.Email) == "" {
		return errors.New("first name, last name, and email are required")
	}
	if !emailPattern.MatchString(c.Email) {
		return errors.New("invalid email format")
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		return errors.New("invalid phone number format")
	}
	return nil
}

// Order is one checkout attempt. The paid/delivered/moved flags are
// monotonic: each is set at most once, together with its timestamp.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingMethod  string          `json:"shipping_method"`

	ItemsPriceCents    int64 `json:"items_price_cents"`
	ShippingPriceCents int64 `json:"shipping_price_cents"`
	TotalPriceCents    int64 `json:"total_price_cents"`

	StripeSessionID string `json:"stripe_session_id"`

	IsPaid         bool       `json:"is_paid"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	IsDelivered    bool       `json:"is_delivered"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	IsMovedToSales bool       `json:"is_moved_to_sales"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for _, item := range o.Items {
		if item.ProductID == "" {
			return errors.New("order item product id is required")
		}
		if item.Quantity < 1 {
			return errors.New("order item quantity must be at least 1")
		}
		if item.UnitPriceCents < 0 {
			return errors.New("order item price must not be negative")
		}
	}
	if err := o.ShippingAddress.Validate(); err != nil {
		return err
	}
	if err := o.CustomerDetails.Validate(); err != nil {
		return err
	}
	if o.PaymentMethod != PaymentMethodCard {
		return errors.New("invalid payment method")
	}
	if o.TotalPriceCents != o.ItemsPriceCents+o.ShippingPriceCents {
		return errors.New("total price must equal items price plus shipping price")
	}
	return nil
}

// MarkPaid flips the paid flag once. Returns false when the order was
// already paid, so webhook redeliveries stay no-ops.
func (o *Order) MarkPaid(at time.Time) bool {
	if o.IsPaid {
		return false
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.UpdatedAt = at
	return true
}

// MarkDelivered flips the delivered flag once.
func (o *Order) MarkDelivered(at time.Time) bool {
	if o.IsDelivered {
		return false
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	o.UpdatedAt = at
	return true
}

// MarkMovedToSales flips the moved-to-sales flag once. Only delivered
// orders qualify.
func (o *Order) MarkMovedToSales(at time.Time) bool {
	if !o.IsDelivered || o.IsMovedToSales {
		return false
	}
	o.IsMovedToSales = true
	o.UpdatedAt = at
	return true
}

// Cancelable reports whether the customer may still cancel. Payment is
// irreversible from the storefront's side.
func (o Order) Cancelable() bool {
	return !o.IsPaid
}

// OwnedBy reports whether the order belongs to the given user. Guest orders
// have no owner.
func (o Order) OwnedBy(userID string) bool {
	return o.UserID != "" && o.UserID == userID
}

// ArchivedOrder is a cold copy of a finalized order.
type ArchivedOrder struct {
	Order
	ArchivedAt time.Time `json:"archived_at"`
}
