package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/locks"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

type UpdateOrderCommand struct {
	OrderID         string
	CallerUserID    string
	DeliveryAddress string
	Note            string
	PaymentMethod   domain.PaymentMethod
	Items           []OrderItemInput
}

func (c UpdateOrderCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	if strings.TrimSpace(c.CallerUserID) == "" {
		return errors.New("caller user_id is required")
	}
	return validateItems(c.Items)
}

type UpdateOrderCommandHandler struct {
	repo     ports.OrderRepository
	adjuster *StockAdjuster
	locks    *locks.Keyed
}

func NewUpdateOrderCommandHandler(
	repo ports.OrderRepository,
	adjuster *StockAdjuster,
	keyed *locks.Keyed,
) *UpdateOrderCommandHandler {
	return &UpdateOrderCommandHandler{
		repo:     repo,
		adjuster: adjuster,
		locks:    keyed,
	}
}

// Handle replaces a pending order's item list wholesale. Stock is
// reconciled per product by the signed difference between old and new
// quantity; products present only in the old list are not restored,
// matching the established reconciliation behavior callers depend on.
func (h *UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Every product whose stock can change appears in the new list, so
	// the new list plus the order key covers the whole write set.
	keys := append(locks.ProductKeys(productIDs(cmd.Items)), locks.OrderKey(cmd.OrderID))
	unlock := h.locks.Lock(keys...)
	defer unlock()

	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != cmd.CallerUserID {
		return nil, fmt.Errorf("%w: you can only update your own orders", ports.ErrForbidden)
	}

	if !order.CanUpdate() {
		return nil, fmt.Errorf("%w: cannot update an order that is already dispatched", ports.ErrInvalidState)
	}

	newQuantities := make(map[string]int, len(cmd.Items))
	for _, item := range cmd.Items {
		if _, ok := newQuantities[item.ProductID]; !ok {
			newQuantities[item.ProductID] = item.Quantity
		}
	}

	for _, existing := range order.Items {
		newQty, ok := newQuantities[existing.ProductID]
		if !ok {
			continue
		}
		delta := newQty - existing.Quantity
		if err := h.adjuster.Apply(ctx, existing.ProductID, -delta); err != nil {
			return nil, err
		}
	}

	items := make([]domain.OrderItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		items = append(items, domain.NewOrderItem(
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPriceCents,
			item.VendorID,
			item.VendorEmail,
		))
	}

	order.Note = cmd.Note
	order.DeliveryAddress = cmd.DeliveryAddress
	order.PaymentMethod = cmd.PaymentMethod
	order.ReplaceItems(items)
	order.UpdatedAt = time.Now().UTC()

	if err := h.repo.Replace(ctx, *order); err != nil {
		return nil, err
	}

	return order, nil
}
