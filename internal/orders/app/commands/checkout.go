package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uwearuk/storefront/internal/cart"
	catalogports "github.com/uwearuk/storefront/internal/catalog/ports"
	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// CheckoutItem is one requested line, referencing the catalog by id. Prices
// are never taken from the client; the catalog is authoritative.
type CheckoutItem struct {
	ProductID    string
	Quantity     int
	Size         string
	SerialNumber string
}

// CheckoutCommand captures a checkout request. The claimed prices are what
// the client displayed to the customer; they must match the server-side
// calculation before any money is requested.
type CheckoutCommand struct {
	UserID          string
	Items           []CheckoutItem
	ShippingAddress domain.ShippingAddress
	CustomerDetails domain.CustomerDetails
	PaymentMethod   string

	ClaimedItemsPriceCents    int64
	ClaimedShippingPriceCents int64
	ClaimedTotalPriceCents    int64
}

// Validate runs the request-shape checks that need no repository access.
func (c CheckoutCommand) Validate() error {
	if len(c.Items) == 0 {
		return apperrors.NewValidationError("no order items")
	}
	for _, item := range c.Items {
		if item.ProductID == "" || item.Quantity < 1 || item.Size == "" {
			return apperrors.NewValidationError("invalid order item")
		}
	}
	if err := c.ShippingAddress.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := c.CustomerDetails.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if c.PaymentMethod != domain.PaymentMethodCard {
		return apperrors.NewValidationError("invalid payment method")
	}
	return nil
}

// CheckoutResult carries the created order and the provider page the
// customer is redirected to.
type CheckoutResult struct {
	Order       *domain.Order
	RedirectURL string
}

// CheckoutHandler handles checkout commands.
type CheckoutHandler interface {
	Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error)
}

// CheckoutURLs are the pages the provider sends the customer back to.
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

type CheckoutCommandHandler struct {
	orders   ports.OrderRepository
	products catalogports.ProductRepository
	gateway  ports.PaymentGateway
	events   ports.EventBus
	carts    cart.Store
	urls     CheckoutURLs
	logger   *slog.Logger
}

func NewCheckoutCommandHandler(
	orders ports.OrderRepository,
	products catalogports.ProductRepository,
	gateway ports.PaymentGateway,
	events ports.EventBus,
	carts cart.Store,
	urls CheckoutURLs,
	logger *slog.Logger,
) *CheckoutCommandHandler {
	return &CheckoutCommandHandler{
		orders:   orders,
		products: products,
		gateway:  gateway,
		events:   events,
		carts:    carts,
		urls:     urls,
		logger:   logger,
	}
}

// Handle runs the checkout sequence: validate, snapshot and price the items
// from the catalog, verify the client's price echoes, persist the order with
// a placeholder session, provision the payment session, attach it, reserve
// stock, and clear the cart. Failures after the order row exists compensate
// by deleting it so no order is left pointing at nothing.
func (h *CheckoutCommandHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, itemsPriceCents, err := h.snapshotItems(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	if !domain.PriceMatches(itemsPriceCents, cmd.ClaimedItemsPriceCents) {
		return nil, apperrors.NewValidationError("items price mismatch")
	}
	if cmd.ClaimedShippingPriceCents != domain.ShippingPriceCents {
		return nil, apperrors.NewValidationError("shipping price mismatch")
	}
	totalPriceCents := itemsPriceCents + domain.ShippingPriceCents
	if !domain.PriceMatches(totalPriceCents, cmd.ClaimedTotalPriceCents) {
		return nil, apperrors.NewValidationError("total price mismatch")
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:                 uuid.NewString(),
		UserID:             cmd.UserID,
		Items:              items,
		ShippingAddress:    cmd.ShippingAddress,
		CustomerDetails:    cmd.CustomerDetails,
		PaymentMethod:      cmd.PaymentMethod,
		ShippingMethod:     domain.ShippingMethodRoyalMail,
		ItemsPriceCents:    itemsPriceCents,
		ShippingPriceCents: domain.ShippingPriceCents,
		TotalPriceCents:    totalPriceCents,
		StripeSessionID:    domain.SessionPlaceholder,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := order.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := h.orders.Create(ctx, order); err != nil {
		return nil, apperrors.NewInternalError("order creation failed", err)
	}

	session, err := h.gateway.CreateSession(ctx, h.sessionInput(order))
	if err != nil {
		h.compensate(ctx, order.ID)
		return nil, apperrors.NewUpstreamError("failed to create payment session", err)
	}

	if err := h.orders.AttachSession(ctx, order.ID, session.ID); err != nil {
		h.compensate(ctx, order.ID)
		return nil, apperrors.NewInternalError("order update failed", err)
	}
	order.StripeSessionID = session.ID

	if err := h.reserveStock(ctx, items); err != nil {
		h.compensate(ctx, order.ID)
		return nil, err
	}

	if cmd.UserID != "" {
		if err := h.carts.Clear(ctx, cmd.UserID); err != nil && !errors.Is(err, cart.ErrNotFound) {
			h.logger.WarnContext(ctx, "failed to clear cart", "error", err, "user_id", cmd.UserID)
		}
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to publish order created event", "error", err, "order_id", order.ID)
	}

	return &CheckoutResult{Order: &order, RedirectURL: session.RedirectURL}, nil
}

// snapshotItems resolves each requested line against the catalog and freezes
// name, price, and image into the order.
func (h *CheckoutCommandHandler) snapshotItems(ctx context.Context, requested []CheckoutItem) ([]domain.OrderItem, int64, error) {
	items := make([]domain.OrderItem, 0, len(requested))

	var itemsPriceCents int64
	for _, line := range requested {
		product, err := h.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				return nil, 0, apperrors.NewNotFoundError(fmt.Sprintf("product not found: %s", line.ProductID))
			}
			return nil, 0, apperrors.NewInternalError("failed to load product", err)
		}
		if product.CountInStock < line.Quantity {
			return nil, 0, apperrors.NewValidationError(fmt.Sprintf("insufficient stock for %s", product.Name))
		}
		if !product.HasSize(line.Size) {
			return nil, 0, apperrors.NewValidationError(fmt.Sprintf("invalid size for %s: %s", product.Name, line.Size))
		}

		itemsPriceCents += product.PriceCents * int64(line.Quantity)
		items = append(items, domain.OrderItem{
			ProductID:      product.ID,
			Name:           product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			Size:           line.Size,
			Image:          product.PrimaryImage(),
			SerialNumber:   line.SerialNumber,
		})
	}

	return items, itemsPriceCents, nil
}

func (h *CheckoutCommandHandler) sessionInput(order domain.Order) ports.CreateSessionInput {
	lineItems := make([]ports.SessionLineItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lineItems = append(lineItems, ports.SessionLineItem{
			Name:            fmt.Sprintf("%s (%s)", item.Name, item.Size),
			UnitAmountCents: item.UnitPriceCents,
			Quantity:        int64(item.Quantity),
		})
	}
	lineItems = append(lineItems, ports.SessionLineItem{
		Name:            fmt.Sprintf("Shipping (%s)", order.ShippingMethod),
		UnitAmountCents: order.ShippingPriceCents,
		Quantity:        1,
	})

	return ports.CreateSessionInput{
		LineItems:     lineItems,
		SuccessURL:    fmt.Sprintf("%s?orderId=%s", h.urls.SuccessURL, order.ID),
		CancelURL:     h.urls.CancelURL,
		CustomerEmail: order.CustomerDetails.Email,
		Metadata: map[string]string{
			"userId":  order.UserID,
			"orderId": order.ID,
		},
	}
}

// reserveStock decrements stock line by line. A failed line releases
// whatever was already taken so a rejected checkout never leaks inventory.
func (h *CheckoutCommandHandler) reserveStock(ctx context.Context, items []domain.OrderItem) error {
	for i, item := range items {
		if err := h.products.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
			for _, taken := range items[:i] {
				if releaseErr := h.products.ReleaseStock(ctx, taken.ProductID, taken.Quantity); releaseErr != nil {
					h.logger.ErrorContext(ctx, "failed to release reserved stock",
						"error", releaseErr, "product_id", taken.ProductID)
				}
			}
			if errors.Is(err, catalogports.ErrInsufficientStock) {
				return apperrors.NewConflictError(fmt.Sprintf("insufficient stock for %s", item.Name))
			}
			return apperrors.NewInternalError("failed to reserve stock", err)
		}
	}
	return nil
}

// compensate removes an order that never reached a usable payment session.
func (h *CheckoutCommandHandler) compensate(ctx context.Context, orderID string) {
	if err := h.orders.Delete(ctx, orderID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete order during compensation",
			"error", err, "order_id", orderID)
	}
}
