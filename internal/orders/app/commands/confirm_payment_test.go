package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/app/commands"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

func TestConfirmPayment(t *testing.T) {
	t.Run("marks order paid and sends confirmation", func(t *testing.T) {
		stored := paidTestOrder("ord-1", nil)
		repo := &mockRepository{
			getBySessionIDFn: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				if sessionID != "cs_test_123" {
					return nil, ports.ErrNotFound
				}
				return stored, nil
			},
		}
		events := &mockEventBus{}
		dispatcher := &mockDispatcher{}
		handler := commands.NewConfirmPaymentCommandHandler(repo, events, dispatcher, testLogger())

		order, err := handler.Handle(context.Background(), commands.ConfirmPaymentCommand{SessionID: "cs_test_123"})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order == nil || !order.IsPaid {
			t.Fatal("expected order to be marked paid")
		}
		if len(repo.updated) != 1 {
			t.Fatalf("expected 1 update, got %d", len(repo.updated))
		}
		if len(events.paid) != 1 || events.paid[0] != "ord-1" {
			t.Errorf("expected order paid event, got %v", events.paid)
		}
		if len(dispatcher.sent) != 1 || dispatcher.sent[0].To != "alice@example.com" {
			t.Errorf("expected confirmation email to customer, got %v", dispatcher.sent)
		}
	})

	t.Run("acknowledges unknown session without error", func(t *testing.T) {
		repo := &mockRepository{}
		handler := commands.NewConfirmPaymentCommandHandler(repo, &mockEventBus{}, &mockDispatcher{}, testLogger())

		order, err := handler.Handle(context.Background(), commands.ConfirmPaymentCommand{SessionID: "cs_unknown"})

		if err != nil {
			t.Fatalf("expected no error for unknown session, got: %v", err)
		}
		if order != nil {
			t.Errorf("expected nil order, got %+v", order)
		}
		if len(repo.updated) != 0 {
			t.Errorf("expected no update, got %d", len(repo.updated))
		}
	})

	t.Run("redelivered event is a no-op", func(t *testing.T) {
		stored := paidTestOrder("ord-1", nil)
		repo := &mockRepository{
			getBySessionIDFn: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				return stored, nil
			},
		}
		events := &mockEventBus{}
		dispatcher := &mockDispatcher{}
		handler := commands.NewConfirmPaymentCommandHandler(repo, events, dispatcher, testLogger())

		cmd := commands.ConfirmPaymentCommand{SessionID: "cs_test_123"}
		if _, err := handler.Handle(context.Background(), cmd); err != nil {
			t.Fatalf("first delivery failed: %v", err)
		}
		firstPaidAt := *stored.PaidAt

		order, err := handler.Handle(context.Background(), cmd)

		if err != nil {
			t.Fatalf("expected redelivery to be acknowledged, got: %v", err)
		}
		if order == nil || !order.IsPaid {
			t.Fatal("expected order to stay paid")
		}
		if !order.PaidAt.Equal(firstPaidAt) {
			t.Errorf("expected PaidAt unchanged, got %v", order.PaidAt)
		}
		if len(repo.updated) != 1 {
			t.Errorf("expected single update across deliveries, got %d", len(repo.updated))
		}
		if len(dispatcher.sent) != 1 {
			t.Errorf("expected single confirmation email, got %d", len(dispatcher.sent))
		}
	})

	t.Run("surfaces persistence failure so the provider retries", func(t *testing.T) {
		stored := paidTestOrder("ord-1", nil)
		repo := &mockRepository{
			getBySessionIDFn: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				return stored, nil
			},
			updateFn: func(ctx context.Context, order domain.Order) error {
				return errors.New("connection reset")
			},
		}
		handler := commands.NewConfirmPaymentCommandHandler(repo, &mockEventBus{}, &mockDispatcher{}, testLogger())

		_, err := handler.Handle(context.Background(), commands.ConfirmPaymentCommand{SessionID: "cs_test_123"})

		if apperrors.KindOf(err) != apperrors.KindInternal {
			t.Errorf("expected internal error, got: %v", err)
		}
	})

	t.Run("email failure does not fail confirmation", func(t *testing.T) {
		stored := paidTestOrder("ord-1", nil)
		repo := &mockRepository{
			getBySessionIDFn: func(ctx context.Context, sessionID string) (*domain.Order, error) {
				return stored, nil
			},
		}
		dispatcher := &mockDispatcher{
			sendFn: func(ctx context.Context, to, subject, htmlBody string) error {
				return errors.New("smtp relay down")
			},
		}
		handler := commands.NewConfirmPaymentCommandHandler(repo, &mockEventBus{}, dispatcher, testLogger())

		order, err := handler.Handle(context.Background(), commands.ConfirmPaymentCommand{SessionID: "cs_test_123"})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order == nil || !order.IsPaid {
			t.Fatal("expected order to be marked paid despite email failure")
		}
	})
}
