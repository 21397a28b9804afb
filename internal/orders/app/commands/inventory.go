package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// StockAdjuster applies signed quantity deltas to products. Every
// adjustment is a read-modify-write pair against the product store. A
// product that no longer exists is skipped: logged, non-fatal, and the
// order operation carries on without it.
type StockAdjuster struct {
	inventory ports.ProductInventory
	logger    *slog.Logger
}

// NewStockAdjuster constructs a StockAdjuster.
func NewStockAdjuster(inventory ports.ProductInventory, logger *slog.Logger) *StockAdjuster {
	return &StockAdjuster{inventory: inventory, logger: logger}
}

// Apply adds delta to the product's available quantity and persists the
// replacement. Negative deltas consume stock, positive deltas return it.
func (a *StockAdjuster) Apply(ctx context.Context, productID string, delta int) error {
	if delta == 0 {
		return nil
	}

	product, err := a.inventory.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("fetch product %s: %w", productID, err)
	}
	if product == nil {
		a.logger.WarnContext(ctx, "product missing during stock adjustment, skipping",
			"product_id", productID,
			"delta", delta,
		)
		return nil
	}

	product.AvailableQuantity += delta
	if err := a.inventory.UpdateProduct(ctx, *product); err != nil {
		return fmt.Errorf("update product %s: %w", productID, err)
	}

	return nil
}
