package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// VendorNotifier is the slice of the notification emitter the monitor
// needs: a fire-and-forget message addressed to a vendor.
type VendorNotifier interface {
	NotifyVendor(ctx context.Context, vendorEmail, vendorID, productName string, availableQuantity int, message string) error
}

// LowStockMonitor decorates a Store so that every persisted write is
// followed by a threshold check. Crossing the threshold emits a
// low-stock notification to the product's vendor. Order processing is
// the primary trigger, but any write path counts.
type LowStockMonitor struct {
	store    Store
	notifier VendorNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewLowStockMonitor wraps a store with low-stock notification checks.
func NewLowStockMonitor(store Store, notifier VendorNotifier, logger *slog.Logger) *LowStockMonitor {
	return &LowStockMonitor{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (m *LowStockMonitor) GetByID(ctx context.Context, id string) (*Product, error) {
	return m.store.GetByID(ctx, id)
}

func (m *LowStockMonitor) Create(ctx context.Context, product Product) error {
	if err := m.store.Create(ctx, product); err != nil {
		return err
	}
	m.checkThreshold(ctx, product)
	return nil
}

func (m *LowStockMonitor) Update(ctx context.Context, product Product) error {
	if err := m.store.Update(ctx, product); err != nil {
		return err
	}
	m.checkThreshold(ctx, product)
	return nil
}

func (m *LowStockMonitor) checkThreshold(ctx context.Context, product Product) {
	if !product.BelowThreshold() {
		return
	}

	message := fmt.Sprintf("Stock for %s is low (less than %d items). Please restock soon.", product.Name, LowStockThreshold)
	err := m.notifier.NotifyVendor(ctx, product.VendorEmail, product.VendorID, product.Name, product.AvailableQuantity, message)
	if err != nil {
		// Notification failure must not fail the write.
		m.logger.WarnContext(ctx, "low stock notification failed",
			"product_id", product.ID,
			"vendor_email", product.VendorEmail,
			"error", err,
		)
	}
}
