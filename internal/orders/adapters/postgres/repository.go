package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// Repository persists orders in postgres. Items, the shipping address, and
// the customer details are stored as JSONB documents since they are frozen
// snapshots, never queried field by field.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `
	id, user_id, items, shipping_address, customer_details,
	payment_method, shipping_method,
	items_price_cents, shipping_price_cents, total_price_cents,
	stripe_session_id,
	is_paid, paid_at, is_delivered, delivered_at, is_moved_to_sales,
	created_at, updated_at
`

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	items, address, details, err := marshalDocuments(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
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
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id = $1`
	return r.getOne(ctx, query, sessionID)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, query, arg)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR user_id = $1)
		  AND ($2::boolean IS NULL OR is_paid = $2)
		  AND ($3::boolean IS NULL OR is_delivered = $3)
		  AND ($4::boolean IS NULL OR is_moved_to_sales = $4)
		  AND ($5::timestamptz IS NULL OR created_at < $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7
	`

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		filter.IsPaid,
		filter.IsDelivered,
		filter.IsMovedToSales,
		filter.CreatedBefore,
		pageSize,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (r *Repository) Update(ctx context.Context, order domain.Order) error {
	items, address, details, err := marshalDocuments(order)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET items = $2,
		    shipping_address = $3,
		    customer_details = $4,
		    is_paid = $5,
		    paid_at = $6,
		    is_delivered = $7,
		    delivered_at = $8,
		    is_moved_to_sales = $9,
		    updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		order.ID,
		items,
		address,
		details,
		order.IsPaid,
		order.PaidAt,
		order.IsDelivered,
		order.DeliveredAt,
		order.IsMovedToSales,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) AttachSession(ctx context.Context, orderID, sessionID string) error {
	query := `
		UPDATE orders
		SET stripe_session_id = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, sessionID, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("attach session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func marshalDocuments(order domain.Order) (items, address, details []byte, err error) {
	items, err = json.Marshal(order.Items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal order items: %w", err)
	}
	address, err = json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal shipping address: %w", err)
	}
	details, err = json.Marshal(order.CustomerDetails)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal customer details: %w", err)
	}
	return items, address, details, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order   domain.Order
		userID  *string
		items   []byte
		address []byte
		details []byte
	)

	err := row.Scan(
		&order.ID,
		&userID,
		&items,
		&address,
		&details,
		&order.PaymentMethod,
		&order.ShippingMethod,
		&order.ItemsPriceCents,
		&order.ShippingPriceCents,
		&order.TotalPriceCents,
		&order.StripeSessionID,
		&order.IsPaid,
		&order.PaidAt,
		&order.IsDelivered,
		&order.DeliveredAt,
		&order.IsMovedToSales,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		order.UserID = *userID
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(details, &order.CustomerDetails); err != nil {
		return nil, fmt.Errorf("unmarshal customer details: %w", err)
	}

	return &order, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
