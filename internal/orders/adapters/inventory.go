package adapters

import (
	"context"

	"github.com/dejobratic/marketplace/internal/inventory"
)

// InventoryAdapter bridges the order engine's inventory port onto the
// product store. The (nil, nil) miss contract passes through unchanged.
type InventoryAdapter struct {
	store inventory.Store
}

func NewInventoryAdapter(store inventory.Store) *InventoryAdapter {
	return &InventoryAdapter{store: store}
}

func (a *InventoryAdapter) GetProduct(ctx context.Context, id string) (*inventory.Product, error) {
	return a.store.GetByID(ctx, id)
}

func (a *InventoryAdapter) UpdateProduct(ctx context.Context, product inventory.Product) error {
	return a.store.Update(ctx, product)
}
