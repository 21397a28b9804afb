package inventory

import "time"

// StockStatus is a coarse label vendors manage alongside the raw
// quantity counter.
type StockStatus int

const (
	OutOfStock StockStatus = 0
	LowStock   StockStatus = 1
	InStock    StockStatus = 2
)

// CategoryStatus marks whether the product's category is active.
type CategoryStatus int

const (
	CategoryInactive CategoryStatus = 0
	CategoryActive   CategoryStatus = 1
)

// LowStockThreshold is the quantity below which a vendor is warned
// after any persisted product write.
const LowStockThreshold = 10

// Product is the inventory aspect of a catalog entry. AvailableQuantity
// may go negative: adjustments are best-effort read-modify-write pairs
// with no reservation protocol behind them.
type Product struct {
	ID                string         `json:"id"`
	Name              string         `json:"product_name"`
	PriceCents        int64          `json:"price_cents"`
	AvailableQuantity int            `json:"available_quantity"`
	Category          string         `json:"category"`
	Description       string         `json:"description"`
	StockStatus       StockStatus    `json:"stock_status"`
	CategoryStatus    CategoryStatus `json:"category_status"`
	VendorEmail       string         `json:"vendor_email"`
	VendorID          string         `json:"vendor_id"`
	LowStockNotifiedAt *time.Time    `json:"low_stock_notified_at,omitempty"`
}

// BelowThreshold reports whether the quantity has crossed the low-stock
// line.
func (p Product) BelowThreshold() bool {
	return p.AvailableQuantity < LowStockThreshold
}
