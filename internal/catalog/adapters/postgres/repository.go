package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uwearuk/storefront/internal/catalog/domain"
	"github.com/uwearuk/storefront/internal/catalog/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, price_cents, sizes, images, count_in_stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.PriceCents,
		&product.Sizes,
		&product.Images,
		&product.CountInStock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return &product, nil
}

// ReserveStock decrements count_in_stock only when enough units remain.
// The condition lives in the UPDATE itself, so the check and the decrement
// are a single statement and concurrent checkouts cannot oversell.
func (r *Repository) ReserveStock(ctx context.Context, productID string, quantity int) error {
	query := `
		UPDATE products
		SET count_in_stock = count_in_stock - $2, updated_at = $3
		WHERE id = $1 AND count_in_stock >= $2
	`

	result, err := r.pool.Exec(ctx, query, productID, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, productID); err != nil {
			return err
		}
		return ports.ErrInsufficientStock
	}

	return nil
}

func (r *Repository) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	query := `
		UPDATE products
		SET count_in_stock = count_in_stock + $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, productID, quantity, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}
