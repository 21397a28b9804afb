package inventory

import "context"

// Store persists products. GetByID returns (nil, nil) when the product
// does not exist; callers treat a vanished product as a non-fatal skip,
// not an error.
type Store interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, product Product) error
	Update(ctx context.Context, product Product) error
}
