package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/locks"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// OrderItemInput is one requested line as supplied by the caller.
// Product and vendor identity are snapshotted into the order as-is.
type OrderItemInput struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPriceCents int64
	VendorID       string
	VendorEmail    string
}

type CreateOrderCommand struct {
	UserID          string
	Email           string
	DeliveryAddress string
	Note            string
	PaymentMethod   domain.PaymentMethod
	Items           []OrderItemInput
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("email must be valid")
	}
	return validateItems(c.Items)
}

func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return errors.New("order_items must not be empty")
	}
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("product_id is required for every item")
		}
		if item.Quantity <= 0 {
			return errors.New("quantity must be positive")
		}
		if item.UnitPriceCents < 0 {
			return errors.New("unit_price_cents must not be negative")
		}
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo     ports.OrderRepository
	adjuster *StockAdjuster
	events   ports.EventBus
	locks    *locks.Keyed
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	adjuster *StockAdjuster,
	events ports.EventBus,
	keyed *locks.Keyed,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:     repo,
		adjuster: adjuster,
		events:   events,
		locks:    keyed,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	orderID, err := generateOrderID()
	if err != nil {
		return nil, err
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

	order := domain.Order{
		ID:              orderID,
		UserID:          cmd.UserID,
		Email:           cmd.Email,
		Status:          domain.StatusPending,
		Delivered:       false,
		Note:            cmd.Note,
		DeliveryAddress: cmd.DeliveryAddress,
		PaymentMethod:   cmd.PaymentMethod,
		Items:           items,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	order.RecalculateTotal()

	if err := order.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(locks.ProductKeys(productIDs(cmd.Items))...)
	defer unlock()

	// Partial decrements are not undone if a later step fails; the
	// quantity adjustment is best effort, not transactional.
	for _, item := range order.Items {
		if err := h.adjuster.Apply(ctx, item.ProductID, -item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}

func productIDs(items []OrderItemInput) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func generateOrderID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
