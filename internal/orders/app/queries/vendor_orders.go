package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// VendorOrderView is an order as one vendor is allowed to see it: order
// context plus only that vendor's own lines.
type VendorOrderView struct {
	OrderID string             `json:"order_id"`
	UserID  string             `json:"user_id"`
	Email   string             `json:"email"`
	Status  domain.OrderStatus `json:"order_status"`
	Note    string             `json:"note,omitempty"`
	Items   []domain.OrderItem `json:"order_items"`
}

// ListVendorOrdersQuery requests every order containing at least one of
// the vendor's lines.
type ListVendorOrdersQuery struct {
	VendorEmail string
}

func (q ListVendorOrdersQuery) Validate() error {
	if strings.TrimSpace(q.VendorEmail) == "" {
		return errors.New("vendor_email is required")
	}
	return nil
}

// ListVendorOrdersQueryHandler projects shared orders down to the
// requesting vendor's visibility.
type ListVendorOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListVendorOrdersQueryHandler(repo ports.OrderRepository) *ListVendorOrdersQueryHandler {
	return &ListVendorOrdersQueryHandler{repo: repo}
}

func (h *ListVendorOrdersQueryHandler) Handle(ctx context.Context, query ListVendorOrdersQuery) ([]VendorOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.repo.ListByVendor(ctx, query.VendorEmail)
	if err != nil {
		return nil, err
	}

	views := make([]VendorOrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, VendorOrderView{
			OrderID: order.ID,
			UserID:  order.UserID,
			Email:   order.Email,
			Status:  order.Status,
			Note:    order.Note,
			Items:   order.ItemsForVendor(query.VendorEmail),
		})
	}

	return views, nil
}
