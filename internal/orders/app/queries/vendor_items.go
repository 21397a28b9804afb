package queries

import (
	"context"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// VendorOrderItem is one of the vendor's lines flattened out of its
// parent order, with enough order context to act on it.
type VendorOrderItem struct {
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Email          string             `json:"email"`
	OrderStatus    domain.OrderStatus `json:"order_status"`
	Note           string             `json:"note,omitempty"`
	ProductID      string             `json:"product_id"`
	ProductName    string             `json:"product_name"`
	Quantity       int                `json:"quantity"`
	UnitPriceCents int64              `json:"unit_price_cents"`
	LineTotalCents int64              `json:"line_total_cents"`
	ItemStatus     domain.ItemStatus  `json:"order_item_status"`
}

// ListVendorItemsQuery requests the vendor's lines across all orders.
type ListVendorItemsQuery struct {
	VendorEmail string
}

func (q ListVendorItemsQuery) Validate() error {
	return ListVendorOrdersQuery{VendorEmail: q.VendorEmail}.Validate()
}

type ListVendorItemsQueryHandler struct {
	repo ports.OrderRepository
}

func NewListVendorItemsQueryHandler(repo ports.OrderRepository) *ListVendorItemsQueryHandler {
	return &ListVendorItemsQueryHandler{repo: repo}
}

func (h *ListVendorItemsQueryHandler) Handle(ctx context.Context, query ListVendorItemsQuery) ([]VendorOrderItem, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.repo.ListByVendor(ctx, query.VendorEmail)
	if err != nil {
		return nil, err
	}

	var items []VendorOrderItem
	for _, order := range orders {
		for _, item := range order.Items {
			if item.VendorEmail != query.VendorEmail {
				continue
			}
			items = append(items, VendorOrderItem{
				OrderID:        order.ID,
				UserID:         order.UserID,
				Email:          order.Email,
				OrderStatus:    order.Status,
				Note:           order.Note,
				ProductID:      item.ProductID,
				ProductName:    item.ProductName,
				Quantity:       item.Quantity,
				UnitPriceCents: item.UnitPriceCents,
				LineTotalCents: item.LineTotalCents,
				ItemStatus:     item.Status,
			})
		}
	}

	return items, nil
}
