package ports

import (
	"context"

	"github.com/dejobratic/marketplace/internal/inventory"
)

// ProductInventory is the engine's view of the product store. Every
// adjustment is a read-modify-write pair: fetch, mutate the quantity,
// persist the replacement. A nil product with a nil error means the
// product no longer exists; the engine skips the adjustment.
type ProductInventory interface {
	GetProduct(ctx context.Context, id string) (*inventory.Product, error)
	UpdateProduct(ctx context.Context, product inventory.Product) error
}
