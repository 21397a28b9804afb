package ports

import (
	"context"
	"errors"

	"github.com/dejobratic/marketplace/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
// The aggregate is always written wholesale; there is no partial item update.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Replace(ctx context.Context, order domain.Order) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

var (
	// ErrNotFound is returned when the referenced order or product does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrForbidden is returned when the caller lacks rights over the target.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidState is returned when the operation is illegal for the
	// order's current status.
	ErrInvalidState = errors.New("invalid order state")
)
