package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus captures the lifecycle of an order. The integer encoding
// is part of the stored and wire representation.
type OrderStatus int

const (
	StatusPending    OrderStatus = 0
	StatusDispatched OrderStatus = 1
	StatusCompleted  OrderStatus = 2
	StatusCancelled  OrderStatus = 3
)

// ItemStatus tracks fulfillment of a single line item, mutated by the
// owning vendor independently of the order status.
type ItemStatus int

const (
	ItemPending    ItemStatus = 0
	ItemDispatched ItemStatus = 1
	ItemCompleted  ItemStatus = 2
)

// PaymentMethod identifies how the order is paid on delivery.
type PaymentMethod int

const (
	CashOnDelivery PaymentMethod = 1
	CardOnDelivery PaymentMethod = 2
)

// Order is the aggregate root: the order document and its embedded line
// items are stored and replaced as one unit.
type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Email           string        `json:"email"`
	Status          OrderStatus   `json:"order_status"`
	Delivered       bool          `json:"delivered"`
	Note            string        `json:"note,omitempty"`
	TotalCents      int64         `json:"order_total_cents"`
	DeliveryAddress string        `json:"delivery_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Items           []OrderItem   `json:"order_items"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// OrderItem is one product entry within an order. Product and vendor
// identity are snapshotted at order time and do not follow later
// renames.
type OrderItem struct {
	ProductID      string     `json:"product_id"`
	ProductName    string     `json:"product_name"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	LineTotalCents int64      `json:"line_total_cents"`
	VendorID       string     `json:"vendor_id"`
	VendorEmail    string     `json:"vendor_email"`
	Status         ItemStatus `json:"order_item_status"`
}

// NewOrderItem snapshots a requested line and derives its total.
func NewOrderItem(productID, productName string, quantity int, unitPriceCents int64, vendorID, vendorEmail string) OrderItem {
	return OrderItem{
		ProductID:      productID,
		ProductName:    productName,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		LineTotalCents: int64(quantity) * unitPriceCents,
		VendorID:       vendorID,
		VendorEmail:    vendorEmail,
		Status:         ItemPending,
	}
}

// RecalculateTotal derives the order total from its line totals. It is
// invoked on every write path that touches items; the total is never
// trusted as input.
func (o *Order) RecalculateTotal() {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotalCents
	}
	o.TotalCents = total
}

// ReplaceItems swaps the item list wholesale, resetting every line to
// pending and recomputing the total. Legal only while the order is
// pending; callers gate on CanUpdate.
func (o *Order) ReplaceItems(items []OrderItem) {
	for i := range items {
		items[i].Status = ItemPending
	}
	o.Items = items
	o.RecalculateTotal()
}

// CanUpdate reports whether structural edits to the item list are
// still legal.
func (o Order) CanUpdate() bool {
	return o.Status == StatusPending
}

// IsTerminal indicates whether the order has left the active lifecycle.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// ItemFor returns the line matching both product and vendor. The
// compound key is what keeps one vendor from addressing another
// vendor's line in a shared order.
func (o *Order) ItemFor(productID, vendorEmail string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID && o.Items[i].VendorEmail == vendorEmail {
			return &o.Items[i]
		}
	}
	return nil
}

// ItemsForVendor projects the item list down to the lines owned by one
// vendor. Used for every vendor-facing read.
func (o Order) ItemsForVendor(vendorEmail string) []OrderItem {
	var items []OrderItem
	for _, item := range o.Items {
		if item.VendorEmail == vendorEmail {
			items = append(items, item)
		}
	}
	return items
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(o.Email) == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(o.Email, "@") {
		return errors.New("email must be valid")
	}
	if len(o.Items) == 0 {
		return errors.New("order_items must not be empty")
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("product_id is required for every item")
		}
		if item.Quantity <= 0 {
			return errors.New("quantity must be positive")
		}
		if item.UnitPriceCents < 0 {
			return errors.New("unit_price_cents must not be negative")
		}
		if item.LineTotalCents != int64(item.Quantity)*item.UnitPriceCents {
			return errors.New("line_total_cents must equal quantity * unit_price_cents")
		}
	}
	return nil
}
