package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uwearuk/storefront/internal/orders/adapters/memory"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

func storedOrder(id, userID string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:              id,
		UserID:          userID,
		StripeSessionID: "cs_" + id,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Create(ctx, storedOrder("ord-1", "user-1", now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "ord-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", got.UserID)
	}

	bySession, err := repo.GetBySessionID(ctx, "cs_ord-1")
	if err != nil {
		t.Fatalf("get by session failed: %v", err)
	}
	if bySession.ID != "ord-1" {
		t.Errorf("expected ord-1, got %s", bySession.ID)
	}

	if _, err := repo.GetByID(ctx, "ord-404"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if _, err := repo.GetBySessionID(ctx, "cs_unknown"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepositoryUpdate(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	order := storedOrder("ord-1", "user-1", now)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.MarkPaid(now)
	if err := repo.Update(ctx, order); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "ord-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.IsPaid {
		t.Error("expected order to be paid after update")
	}

	if err := repo.Update(ctx, storedOrder("ord-404", "", now)); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepositoryAttachSession(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	order := storedOrder("ord-1", "user-1", time.Now().UTC())
	order.StripeSessionID = domain.SessionPlaceholder
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.AttachSession(ctx, "ord-1", "cs_real"); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	got, err := repo.GetBySessionID(ctx, "cs_real")
	if err != nil {
		t.Fatalf("get by session failed: %v", err)
	}
	if got.ID != "ord-1" {
		t.Errorf("expected ord-1, got %s", got.ID)
	}

	if err := repo.AttachSession(ctx, "ord-404", "cs_x"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, storedOrder("ord-1", "user-1", time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Delete(ctx, "ord-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "ord-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
	if err := repo.Delete(ctx, "ord-1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got: %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	oldPaid := storedOrder("ord-1", "user-1", base.Add(-48*time.Hour))
	oldPaid.MarkPaid(base.Add(-47 * time.Hour))
	newUnpaid := storedOrder("ord-2", "user-1", base.Add(-time.Hour))
	otherUser := storedOrder("ord-3", "user-2", base)

	for _, order := range []domain.Order{oldPaid, newUnpaid, otherUser} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	t.Run("filters by user, newest first", func(t *testing.T) {
		userID := "user-1"
		orders, err := repo.List(ctx, ports.ListFilter{UserID: &userID})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID != "ord-2" || orders[1].ID != "ord-1" {
			t.Errorf("expected ord-2 then ord-1, got %s then %s", orders[0].ID, orders[1].ID)
		}
	})

	t.Run("filters by paid flag", func(t *testing.T) {
		paid := true
		orders, err := repo.List(ctx, ports.ListFilter{IsPaid: &paid})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != "ord-1" {
			t.Errorf("expected only ord-1, got %+v", orders)
		}
	})

	t.Run("filters by age", func(t *testing.T) {
		cutoff := base.Add(-24 * time.Hour)
		orders, err := repo.List(ctx, ports.ListFilter{CreatedBefore: &cutoff})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != "ord-1" {
			t.Errorf("expected only ord-1, got %+v", orders)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(orders) != 1 {
			t.Fatalf("expected 1 order on page 2, got %d", len(orders))
		}
		if orders[0].ID != "ord-1" {
			t.Errorf("expected oldest order on last page, got %s", orders[0].ID)
		}

		empty, err := repo.List(ctx, ports.ListFilter{Page: 3, PageSize: 2})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("expected empty page, got %+v", empty)
		}
	})
}
