package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores orders document-style: scalar columns plus the item
// list as a JSONB payload, replaced wholesale with the rest of the row.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, user_id, email, order_status, delivered, note, order_total_cents,
		delivery_address, payment_method, items, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Email,
		order.Status,
		order.Delivered,
		order.Note,
		order.TotalCents,
		order.DeliveryAddress,
		order.PaymentMethod,
		items,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *Repository) Replace(ctx context.Context, order domain.Order) error {
	query := `
		UPDATE orders
		SET user_id = $2, email = $3, order_status = $4, delivered = $5, note = $6,
		    order_total_cents = $7, delivery_address = $8, payment_method = $9,
		    items = $10, updated_at = $11
		WHERE id = $1
	`

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	result, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Email,
		order.Status,
		order.Delivered,
		order.Note,
		order.TotalCents,
		order.DeliveryAddress,
		order.PaymentMethod,
		items,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("replace order: %w", err)
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

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at
	`

	return r.list(ctx, query, userID)
}

func (r *Repository) ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Order, error) {
	// Element match on the JSONB item list: any line with this vendor
	// pulls the whole order in.
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE items @> jsonb_build_array(jsonb_build_object('vendor_email', $1::text))
		ORDER BY created_at
	`

	return r.list(ctx, query, vendorEmail)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at
	`

	return r.list(ctx, query)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var items []byte

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Email,
		&order.Status,
		&order.Delivered,
		&order.Note,
		&order.TotalCents,
		&order.DeliveryAddress,
		&order.PaymentMethod,
		&items,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	return &order, nil
}
