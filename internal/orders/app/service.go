package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/uwearuk/storefront/internal/cart"
	catalogports "github.com/uwearuk/storefront/internal/catalog/ports"
	"github.com/uwearuk/storefront/internal/notifications"
	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/app/commands"
	"github.com/uwearuk/storefront/internal/orders/app/queries"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/metrics"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	repo       ports.OrderRepository
	products   catalogports.ProductRepository
	events     ports.EventBus
	idemStore  ports.IdempotencyStore
	dispatcher notifications.Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics

	checkoutHandler       commands.CheckoutHandler
	confirmPayment        *commands.ConfirmPaymentCommandHandler
	moveToSales           *commands.MoveToSalesCommandHandler
	getOrderQuery         *queries.GetOrderQueryHandler
	getOrderBySession     *queries.GetOrderBySessionQueryHandler
	listUserOrdersQuery   *queries.ListUserOrdersQueryHandler
	listAllOrdersQuery    *queries.ListAllOrdersQueryHandler
}

// ServiceDeps carries everything Service needs wired.
type ServiceDeps struct {
	Orders     ports.OrderRepository
	Products   catalogports.ProductRepository
	Gateway    ports.PaymentGateway
	Events     ports.EventBus
	Carts      cart.Store
	IdemStore  ports.IdempotencyStore
	Dispatcher notifications.Dispatcher
	URLs       commands.CheckoutURLs
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// NewService wires required dependencies.
func NewService(deps ServiceDeps) *Service {
	coreCheckout := commands.NewCheckoutCommandHandler(
		deps.Orders, deps.Products, deps.Gateway, deps.Events, deps.Carts, deps.URLs, deps.Logger)
	observableCheckout := commands.NewObservableCheckoutHandler(coreCheckout, deps.Logger, deps.Metrics)

	return &Service{
		repo:       deps.Orders,
		products:   deps.Products,
		events:     deps.Events,
		idemStore:  deps.IdemStore,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,

		checkoutHandler:     observableCheckout,
		confirmPayment:      commands.NewConfirmPaymentCommandHandler(deps.Orders, deps.Events, deps.Dispatcher, deps.Logger),
		moveToSales:         commands.NewMoveToSalesCommandHandler(deps.Orders, deps.Events, deps.Dispatcher, deps.Logger),
		getOrderQuery:       queries.NewGetOrderQueryHandler(deps.Orders),
		getOrderBySession:   queries.NewGetOrderBySessionQueryHandler(deps.Orders),
		listUserOrdersQuery: queries.NewListUserOrdersQueryHandler(deps.Orders),
		listAllOrdersQuery:  queries.NewListAllOrdersQueryHandler(deps.Orders),
	}
}

// Checkout orchestrates order creation and payment session provisioning.
func (s *Service) Checkout(ctx context.Context, cmd commands.CheckoutCommand) (*commands.CheckoutResult, error) {
	return s.checkoutHandler.Handle(ctx, cmd)
}

// ConfirmPayment applies a verified payment event to the matching order.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID string) (*domain.Order, error) {
	order, err := s.confirmPayment.Handle(ctx, commands.ConfirmPaymentCommand{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if order != nil && order.IsPaid {
		s.metrics.RecordPaymentConfirmed(ctx)
	}
	return order, nil
}

// GetOrder retrieves an order on behalf of a caller.
func (s *Service) GetOrder(ctx context.Context, orderID, callerID string, callerAdmin bool) (*domain.Order, error) {
	return s.getOrderQuery.Handle(ctx, queries.GetOrderQuery{
		OrderID:     orderID,
		CallerID:    callerID,
		CallerAdmin: callerAdmin,
	})
}

// GetOrderBySession retrieves an order by its payment session id.
func (s *Service) GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	return s.getOrderBySession.Handle(ctx, queries.GetOrderBySessionQuery{SessionID: sessionID})
}

// ListUserOrders returns the caller's orders.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listUserOrdersQuery.Handle(ctx, queries.ListUserOrdersQuery{UserID: userID})
}

// ListAllOrders returns paid orders for the back office.
func (s *Service) ListAllOrders(ctx context.Context, page, pageSize int) ([]domain.Order, error) {
	return s.listAllOrdersQuery.Handle(ctx, queries.ListAllOrdersQuery{Page: page, PageSize: pageSize})
}

// CancelOrder deletes an unpaid order on the owner's request and returns
// its stock to the catalog.
func (s *Service) CancelOrder(ctx context.Context, orderID, callerID string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != "" && !order.OwnedBy(callerID) {
		return apperrors.NewForbiddenError("unauthorized")
	}
	if !order.Cancelable() {
		return apperrors.NewValidationError("cannot cancel a paid order")
	}

	s.restock(ctx, order.Items)

	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return apperrors.NewInternalError("failed to delete order", err)
	}

	s.metrics.RecordOrderCancelled(ctx)
	s.logger.InfoContext(ctx, "order cancelled", "order_id", order.ID, "user_id", callerID)

	if err := s.events.PublishOrderCancelled(ctx, order.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order cancelled event", "error", err, "order_id", order.ID)
	}

	return nil
}

// UpdateOrderInput carries the admin-editable flags. Nil means unchanged.
type UpdateOrderInput struct {
	IsPaid      *bool
	IsDelivered *bool
}

// UpdateOrder applies admin flag edits. Flags only move forward; a request
// to unset a flag is ignored. A paid transition sends the confirmation
// email just as the webhook path does.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, input UpdateOrderInput) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	becamePaid := false

	if input.IsPaid != nil && *input.IsPaid {
		becamePaid = order.MarkPaid(now)
	}
	if input.IsDelivered != nil && *input.IsDelivered {
		order.MarkDelivered(now)
	}

	if err := s.repo.Update(ctx, *order); err != nil {
		return nil, apperrors.NewInternalError("failed to update order", err)
	}

	s.logger.InfoContext(ctx, "order updated", "order_id", order.ID)

	if becamePaid {
		s.metrics.RecordPaymentConfirmed(ctx)
		if err := s.events.PublishOrderPaid(ctx, order.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish order paid event", "error", err, "order_id", order.ID)
		}
		s.sendConfirmationEmail(ctx, *order)
	}

	return order, nil
}

// MarkDelivered flags an order as delivered.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.MarkDelivered(time.Now().UTC()) {
		if err := s.repo.Update(ctx, *order); err != nil {
			return nil, apperrors.NewInternalError("failed to update order", err)
		}

		s.logger.InfoContext(ctx, "order marked as delivered", "order_id", order.ID)
	}

	return order, nil
}

// DeleteOrder removes an order from the back office and returns its stock.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	s.restock(ctx, order.Items)

	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return apperrors.NewInternalError("failed to delete order", err)
	}

	s.logger.InfoContext(ctx, "order deleted", "order_id", order.ID)

	return nil
}

// MoveOrdersToSales flags a batch of delivered orders as moved.
func (s *Service) MoveOrdersToSales(ctx context.Context, orderIDs []string) (*commands.MoveToSalesResult, error) {
	result, err := s.moveToSales.Handle(ctx, commands.MoveToSalesCommand{OrderIDs: orderIDs})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOrdersMoved(ctx, result.ModifiedCount)
	return result, nil
}

// SaveIdempotentResponse writes response details for a caller's key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, userID, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, userID, key, response)
}

// GetIdempotentResponse retrieves response data stored under the caller's
// own key. Another user reusing the same key sees nothing.
func (s *Service) GetIdempotentResponse(ctx context.Context, userID, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, userID, key)
}

func (s *Service) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, apperrors.NewInternalError("failed to load order", err)
	}
	return order, nil
}

// restock returns order quantities to the catalog. Missing products are
// skipped; a vanished product has nothing to restock.
func (s *Service) restock(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.products.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				continue
			}
			s.logger.ErrorContext(ctx, "failed to release stock", "error", err, "product_id", item.ProductID)
		}
	}
}

func (s *Service) sendConfirmationEmail(ctx context.Context, order domain.Order) {
	body, err := notifications.ConfirmationBody(order)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render confirmation email", "error", err, "order_id", order.ID)
		return
	}

	err = s.dispatcher.Send(ctx, order.CustomerDetails.Email, notifications.ConfirmationSubject(order), body)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send order confirmation email",
			"error", err, "order_id", order.ID, "email", order.CustomerDetails.Email)
	}
}
