package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/uwearuk/storefront/internal/cart"
	catalogdomain "github.com/uwearuk/storefront/internal/catalog/domain"
	catalogports "github.com/uwearuk/storefront/internal/catalog/ports"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRepository struct {
	createFn         func(ctx context.Context, order domain.Order) error
	getByIDFn        func(ctx context.Context, id string) (*domain.Order, error)
	getBySessionIDFn func(ctx context.Context, sessionID string) (*domain.Order, error)
	updateFn         func(ctx context.Context, order domain.Order) error
	attachSessionFn  func(ctx context.Context, orderID, sessionID string) error
	deleteFn         func(ctx context.Context, id string) error

	mu       sync.Mutex
	created  []domain.Order
	updated  []domain.Order
	deleted  []string
	attached map[string]string
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	m.created = append(m.created, order)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	if m.getBySessionIDFn != nil {
		return m.getBySessionIDFn(ctx, sessionID)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) Update(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	m.updated = append(m.updated, order)
	m.mu.Unlock()
	if m.updateFn != nil {
		return m.updateFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) AttachSession(ctx context.Context, orderID, sessionID string) error {
	m.mu.Lock()
	if m.attached == nil {
		m.attached = make(map[string]string)
	}
	m.attached[orderID] = sessionID
	m.mu.Unlock()
	if m.attachSessionFn != nil {
		return m.attachSessionFn(ctx, orderID, sessionID)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockProducts struct {
	products map[string]catalogdomain.Product

	reserveFn func(ctx context.Context, productID string, quantity int) error

	reserved []string
	released []string
}

func (m *mockProducts) GetByID(ctx context.Context, id string) (*catalogdomain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, catalogports.ErrNotFound
	}
	return &product, nil
}

func (m *mockProducts) ReserveStock(ctx context.Context, productID string, quantity int) error {
	if m.reserveFn != nil {
		if err := m.reserveFn(ctx, productID, quantity); err != nil {
			return err
		}
	}
	m.reserved = append(m.reserved, productID)
	return nil
}

func (m *mockProducts) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	m.released = append(m.released, productID)
	return nil
}

type mockGateway struct {
	createSessionFn func(ctx context.Context, input ports.CreateSessionInput) (*ports.PaymentSession, error)

	sessions []ports.CreateSessionInput
}

func (m *mockGateway) CreateSession(ctx context.Context, input ports.CreateSessionInput) (*ports.PaymentSession, error) {
	m.sessions = append(m.sessions, input)
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, input)
	}
	return &ports.PaymentSession{ID: "cs_test_123", RedirectURL: "https://checkout.example.com/cs_test_123"}, nil
}

func (m *mockGateway) VerifyWebhook(payload []byte, signatureHeader string) (*ports.PaymentEvent, error) {
	return nil, nil
}

type mockEventBus struct {
	created    []string
	paid       []string
	dispatched []string
	cancelled  []string

	publishCreatedFn func(ctx context.Context, orderID string) error
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	m.created = append(m.created, orderID)
	if m.publishCreatedFn != nil {
		return m.publishCreatedFn(ctx, orderID)
	}
	return nil
}

func (m *mockEventBus) PublishOrderPaid(ctx context.Context, orderID string) error {
	m.paid = append(m.paid, orderID)
	return nil
}

func (m *mockEventBus) PublishOrderDispatched(ctx context.Context, orderID string) error {
	m.dispatched = append(m.dispatched, orderID)
	return nil
}

func (m *mockEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	m.cancelled = append(m.cancelled, orderID)
	return nil
}

type mockCarts struct {
	clearFn func(ctx context.Context, userID string) error

	cleared []string
}

func (m *mockCarts) Get(ctx context.Context, userID string) ([]cart.Item, error) {
	return nil, cart.ErrNotFound
}

func (m *mockCarts) Set(ctx context.Context, userID string, items []cart.Item) error {
	return nil
}

func (m *mockCarts) Clear(ctx context.Context, userID string) error {
	m.cleared = append(m.cleared, userID)
	if m.clearFn != nil {
		return m.clearFn(ctx, userID)
	}
	return nil
}

type mockDispatcher struct {
	sendFn func(ctx context.Context, to, subject, htmlBody string) error

	sent []sentEmail
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *mockDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	if m.sendFn != nil {
		return m.sendFn(ctx, to, subject, htmlBody)
	}
	return nil
}

func paidTestOrder(id string, paidAt *time.Time) *domain.Order {
	order := &domain.Order{
		ID:     id,
		UserID: "user-1",
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Name: "Linen Shirt", Quantity: 1, UnitPriceCents: 1000, Size: "M"},
		},
		ShippingAddress: domain.ShippingAddress{
			Street: "1 High Street", City: "London", PostalCode: "SW1A 1AA", Country: "UK",
			Type: domain.AddressShipping,
		},
		CustomerDetails: domain.CustomerDetails{
			FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
		},
		PaymentMethod:      domain.PaymentMethodCard,
		ShippingMethod:     domain.ShippingMethodRoyalMail,
		ItemsPriceCents:    1000,
		ShippingPriceCents: domain.ShippingPriceCents,
		TotalPriceCents:    1000 + domain.ShippingPriceCents,
		StripeSessionID:    "cs_test_123",
	}
	if paidAt != nil {
		order.MarkPaid(*paidAt)
	}
	return order
}
