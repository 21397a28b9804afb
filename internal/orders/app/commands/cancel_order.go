package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/locks"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

type CancelOrderCommand struct {
	OrderID string
	Note    string
}

func (c CancelOrderCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	return nil
}

type CancelOrderCommandHandler struct {
	repo     ports.OrderRepository
	adjuster *StockAdjuster
	notifier ports.Notifier
	events   ports.EventBus
	locks    *locks.Keyed
	logger   *slog.Logger
}

func NewCancelOrderCommandHandler(
	repo ports.OrderRepository,
	adjuster *StockAdjuster,
	notifier ports.Notifier,
	events ports.EventBus,
	keyed *locks.Keyed,
	logger *slog.Logger,
) *CancelOrderCommandHandler {
	return &CancelOrderCommandHandler{
		repo:     repo,
		adjuster: adjuster,
		notifier: notifier,
		events:   events,
		locks:    keyed,
		logger:   logger,
	}
}

// Handle runs the cancellation state machine. The customer is notified
// on every branch, including refusals: the notification is how they
// learn why cancellation failed.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// First read learns the affected product set; the locked re-read is
	// the authoritative one.
	order, err := h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(order.Items)+1)
	keys = append(keys, locks.OrderKey(cmd.OrderID))
	for _, item := range order.Items {
		keys = append(keys, locks.ProductKey(item.ProductID))
	}
	unlock := h.locks.Lock(keys...)
	defer unlock()

	order, err = h.repo.GetByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case domain.StatusPending:
		for _, item := range order.Items {
			if err := h.adjuster.Apply(ctx, item.ProductID, item.Quantity); err != nil {
				return nil, err
			}
		}

		order.Status = domain.StatusCancelled
		order.Note = cmd.Note
		order.UpdatedAt = time.Now().UTC()

		if err := h.repo.Replace(ctx, *order); err != nil {
			return nil, err
		}

		h.notify(ctx, order, fmt.Sprintf("Your order %s has been canceled. Reason: %s", order.ID, cmd.Note))

		if err := h.events.PublishOrderCancelled(ctx, order.ID, cmd.Note); err != nil {
			h.logger.WarnContext(ctx, "order cancelled but event publish failed", "order_id", order.ID, "error", err)
		}

		return order, nil

	case domain.StatusDispatched:
		h.notify(ctx, order, fmt.Sprintf("Your order %s has already been dispatched and cannot be canceled.", order.ID))
		return nil, fmt.Errorf("%w: order has already been dispatched and cannot be canceled", ports.ErrInvalidState)

	case domain.StatusCompleted:
		h.notify(ctx, order, fmt.Sprintf("Your order %s has been completed and cannot be canceled.", order.ID))
		return nil, fmt.Errorf("%w: order has been completed and cannot be canceled", ports.ErrInvalidState)

	default:
		h.notify(ctx, order, fmt.Sprintf("Your order %s cannot be canceled due to an invalid order status.", order.ID))
		return nil, fmt.Errorf("%w: invalid order status for cancellation", ports.ErrInvalidState)
	}
}

func (h *CancelOrderCommandHandler) notify(ctx context.Context, order *domain.Order, message string) {
	if err := h.notifier.NotifyUser(ctx, order.UserID, order.Email, order.ID, message); err != nil {
		h.logger.WarnContext(ctx, "cancel notification failed", "order_id", order.ID, "error", err)
	}
}
