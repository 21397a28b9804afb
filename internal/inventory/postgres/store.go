package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/marketplace/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetByID(ctx context.Context, id string) (*inventory.Product, error) {
	query := `
		SELECT id, product_name, price_cents, available_quantity, category, description,
		       stock_status, category_status, vendor_email, vendor_id, low_stock_notified_at
		FROM products
		WHERE id = $1
	`

	var product inventory.Product
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.PriceCents,
		&product.AvailableQuantity,
		&product.Category,
		&product.Description,
		&product.StockStatus,
		&product.CategoryStatus,
		&product.VendorEmail,
		&product.VendorID,
		&product.LowStockNotifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return &product, nil
}

func (s *Store) Create(ctx context.Context, product inventory.Product) error {
	query := `
		INSERT INTO products (id, product_name, price_cents, available_quantity, category,
		                      description, stock_status, category_status, vendor_email,
		                      vendor_id, low_stock_notified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.PriceCents,
		product.AvailableQuantity,
		product.Category,
		product.Description,
		product.StockStatus,
		product.CategoryStatus,
		product.VendorEmail,
		product.VendorID,
		product.LowStockNotifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, product inventory.Product) error {
	query := `
		UPDATE products
		SET product_name = $2, price_cents = $3, available_quantity = $4, category = $5,
		    description = $6, stock_status = $7, category_status = $8, vendor_email = $9,
		    vendor_id = $10, low_stock_notified_at = $11
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.PriceCents,
		product.AvailableQuantity,
		product.Category,
		product.Description,
		product.StockStatus,
		product.CategoryStatus,
		product.VendorEmail,
		product.VendorID,
		product.LowStockNotifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update product: no row for id %s", product.ID)
	}

	return nil
}
