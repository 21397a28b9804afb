package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/marketplace/internal/notifications"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) NotifyUser(ctx context.Context, userID, email, orderID, message string) error {
	query := `
		INSERT INTO user_notifications (id, user_id, email, order_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		uuid.NewString(),
		userID,
		email,
		orderID,
		message,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert user notification: %w", err)
	}

	return nil
}

func (s *Store) NotifyVendor(ctx context.Context, vendorEmail, vendorID, productName string, availableQuantity int, message string) error {
	query := `
		INSERT INTO vendor_notifications (id, product_name, available_quantity, vendor_email,
		                                  vendor_id, removed, message, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		uuid.NewString(),
		productName,
		availableQuantity,
		vendorEmail,
		vendorID,
		message,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert vendor notification: %w", err)
	}

	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]notifications.UserNotification, error) {
	query := `
		SELECT id, user_id, email, order_id, message, created_at
		FROM user_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user notifications: %w", err)
	}
	defer rows.Close()

	var result []notifications.UserNotification
	for rows.Next() {
		var n notifications.UserNotification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Email, &n.OrderID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user notification: %w", err)
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user notifications: %w", err)
	}

	return result, nil
}

func (s *Store) ListByVendor(ctx context.Context, vendorEmail string) ([]notifications.VendorNotification, error) {
	query := `
		SELECT id, product_name, available_quantity, vendor_email, vendor_id, removed, message, created_at
		FROM vendor_notifications
		WHERE vendor_email = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, vendorEmail)
	if err != nil {
		return nil, fmt.Errorf("query vendor notifications: %w", err)
	}
	defer rows.Close()

	var result []notifications.VendorNotification
	for rows.Next() {
		var n notifications.VendorNotification
		if err := rows.Scan(&n.ID, &n.ProductName, &n.AvailableQuantity, &n.VendorEmail, &n.VendorID, &n.Removed, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor notification: %w", err)
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor notifications: %w", err)
	}

	return result, nil
}

func (s *Store) ListCancelRequests(ctx context.Context) ([]notifications.UserNotification, error) {
	query := `
		SELECT id, user_id, email, order_id, message, created_at
		FROM user_notifications
		WHERE message LIKE '%' || $1 || '%'
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, notifications.CancelRequestMarker)
	if err != nil {
		return nil, fmt.Errorf("query cancel requests: %w", err)
	}
	defer rows.Close()

	var result []notifications.UserNotification
	for rows.Next() {
		var n notifications.UserNotification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Email, &n.OrderID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cancel request: %w", err)
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cancel requests: %w", err)
	}

	return result, nil
}
