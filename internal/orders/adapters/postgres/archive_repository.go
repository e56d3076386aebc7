package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uwearuk/storefront/internal/orders/domain"
)

// ArchiveRepository writes finalized orders to the archive table. Inserts
// conflict on id and do nothing, so re-copying after a crashed run is safe.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

func (r *ArchiveRepository) Copy(ctx context.Context, order domain.Order, archivedAt time.Time) error {
	items, address, details, err := marshalDocuments(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO archived_orders (` + orderColumns + `, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		nullable(order.UserID),
		items,
		address,
		details,
		order.PaymentMethod,
		order.ShippingMethod,
		order.ItemsPriceCents,
		order.ShippingPriceCents,
		order.TotalPriceCents,
		order.StripeSessionID,
		order.IsPaid,
		order.PaidAt,
		order.IsDelivered,
		order.DeliveredAt,
		order.IsMovedToSales,
		order.CreatedAt,
		order.UpdatedAt,
		archivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert archived order: %w", err)
	}

	return nil
}

func (r *ArchiveRepository) Contains(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM archived_orders WHERE id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check archived order: %w", err)
	}

	return exists, nil
}
