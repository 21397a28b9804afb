package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/marketplace/internal/notifications"
	"github.com/dejobratic/marketplace/internal/orders/app/commands"
	"github.com/dejobratic/marketplace/internal/orders/app/queries"
	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/locks"
	"github.com/dejobratic/marketplace/internal/orders/metrics"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// Service bundles the order lifecycle use cases exposed to the API.
type Service struct {
	repo      ports.OrderRepository
	notifier  ports.Notifier
	events    ports.EventBus
	idemStore ports.IdempotencyStore
	locks     *locks.Keyed
	adjuster  *commands.StockAdjuster
	logger    *slog.Logger

	createOrderHandler commands.CommandHandler
	updateOrderHandler *commands.UpdateOrderCommandHandler
	cancelOrderHandler commands.CancelHandler

	getOrderHandler     *queries.GetOrderQueryHandler
	vendorOrdersHandler *queries.ListVendorOrdersQueryHandler
	vendorItemsHandler  *queries.ListVendorItemsQueryHandler
}

// NewService wires required dependencies. All mutations share one lock
// coordinator so operations touching the same orders or products are
// serialized in-process.
func NewService(
	repo ports.OrderRepository,
	inventory ports.ProductInventory,
	notifier ports.Notifier,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	keyed := locks.NewKeyed()
	adjuster := commands.NewStockAdjuster(inventory, logger)

	createHandler := commands.NewCreateOrderCommandHandler(repo, adjuster, events, keyed)
	observableCreate := commands.NewObservableCommandHandler(createHandler, logger, m)

	cancelHandler := commands.NewCancelOrderCommandHandler(repo, adjuster, notifier, events, keyed, logger)
	observableCancel := commands.NewObservableCancelHandler(cancelHandler, logger, m)

	return &Service{
		repo:                repo,
		notifier:            notifier,
		events:              events,
		idemStore:           idem,
		locks:               keyed,
		adjuster:            adjuster,
		logger:              logger,
		createOrderHandler:  observableCreate,
		updateOrderHandler:  commands.NewUpdateOrderCommandHandler(repo, adjuster, keyed),
		cancelOrderHandler:  observableCancel,
		getOrderHandler:     queries.NewGetOrderQueryHandler(repo),
		vendorOrdersHandler: queries.NewListVendorOrdersQueryHandler(repo),
		vendorItemsHandler:  queries.NewListVendorItemsQueryHandler(repo),
	}
}

// OrderItemPayload captures one requested line in API payloads.
type OrderItemPayload struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	VendorID       string `json:"vendor_id"`
	VendorEmail    string `json:"vendor_email"`
}

// CreateOrderInput captures payload for creating an order. Owner
// identity comes from the caller context, never the body.
type CreateOrderInput struct {
	UserID          string               `json:"-"`
	Email           string               `json:"-"`
	DeliveryAddress string               `json:"delivery_address"`
	Note            string               `json:"note"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	Items           []OrderItemPayload   `json:"order_items"`
}

// UpdateOrderInput captures payload for replacing a pending order's
// contents.
type UpdateOrderInput struct {
	OrderID         string               `json:"-"`
	CallerUserID    string               `json:"-"`
	DeliveryAddress string               `json:"delivery_address"`
	Note            string               `json:"note"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	Items           []OrderItemPayload   `json:"order_items"`
}

// CreateOrder orchestrates order creation, inventory decrements, and
// event emission.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		UserID:          input.UserID,
		Email:           input.Email,
		DeliveryAddress: input.DeliveryAddress,
		Note:            input.Note,
		PaymentMethod:   input.PaymentMethod,
		Items:           toItemInputs(input.Items),
	}
	return s.createOrderHandler.Handle(ctx, cmd)
}

// UpdateOrder replaces a pending order's items and metadata, owner only.
func (s *Service) UpdateOrder(ctx context.Context, input UpdateOrderInput) (*domain.Order, error) {
	cmd := commands.UpdateOrderCommand{
		OrderID:         input.OrderID,
		CallerUserID:    input.CallerUserID,
		DeliveryAddress: input.DeliveryAddress,
		Note:            input.Note,
		PaymentMethod:   input.PaymentMethod,
		Items:           toItemInputs(input.Items),
	}
	return s.updateOrderHandler.Handle(ctx, cmd)
}

// CancelOrder runs the staff cancellation state machine.
func (s *Service) CancelOrder(ctx context.Context, orderID, note string) (*domain.Order, error) {
	return s.cancelOrderHandler.Handle(ctx, commands.CancelOrderCommand{OrderID: orderID, Note: note})
}

// RequestCancellation raises a staff-facing advisory notification. It
// touches neither inventory nor order state.
func (s *Service) RequestCancellation(ctx context.Context, orderID, userID, email string) error {
	return s.notifier.NotifyUser(ctx, userID, email, orderID, notifications.CancelRequestMarker)
}

// DeleteOrder removes an order and returns its quantities to stock
// unconditionally, regardless of status. No notification is sent.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	// First read learns the affected product set; the locked re-read is
	// the authoritative one.
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(order.Items)+1)
	keys = append(keys, locks.OrderKey(orderID))
	for _, item := range order.Items {
		keys = append(keys, locks.ProductKey(item.ProductID))
	}
	unlock := s.locks.Lock(keys...)
	defer unlock()

	order, err = s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := s.adjuster.Apply(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, orderID)
}

// ChangeOrderStatus is the administrative override: it overwrites the
// status with no transition validation and no inventory side effect.
// It deliberately bypasses the cancellation state machine.
func (s *Service) ChangeOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	unlock := s.locks.Lock(locks.OrderKey(orderID))
	defer unlock()

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Replace(ctx, *order); err != nil {
		return nil, err
	}

	return order, nil
}

// ChangeDelivered sets the delivered flag. Setting it true notifies the
// owner; clearing it is silent.
func (s *Service) ChangeDelivered(ctx context.Context, orderID string, delivered bool) (*domain.Order, error) {
	unlock := s.locks.Lock(locks.OrderKey(orderID))
	defer unlock()

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Delivered = delivered
	order.UpdatedAt = time.Now().UTC()

	if err := s.repo.Replace(ctx, *order); err != nil {
		return nil, err
	}

	if delivered {
		if err := s.notifier.NotifyUser(ctx, order.UserID, order.Email, order.ID, "Your order has been delivered."); err != nil {
			s.logger.WarnContext(ctx, "delivered notification failed", "order_id", order.ID, "error", err)
		}
		if err := s.events.PublishOrderDelivered(ctx, order.ID); err != nil {
			s.logger.WarnContext(ctx, "delivered event publish failed", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}

// UpdateOrderItemStatus mutates one line's fulfillment status, scoped
// by the compound (order, product, vendor) key. A missing order, a
// missing product, and a vendor that does not own the line are reported
// as one combined signal.
func (s *Service) UpdateOrderItemStatus(ctx context.Context, orderID, productID, vendorEmail string, status domain.ItemStatus) error {
	unlock := s.locks.Lock(locks.OrderKey(orderID))
	defer unlock()

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return errItemNotFound
	}

	item := order.ItemFor(productID, vendorEmail)
	if item == nil {
		return errItemNotFound
	}

	item.Status = status
	order.UpdatedAt = time.Now().UTC()

	return s.repo.Replace(ctx, *order)
}

// errItemNotFound deliberately collapses "no such order", "no such
// product", and "not your line" into one signal so callers cannot probe
// another vendor's lines.
var errItemNotFound = fmt.Errorf("%w: order or product not found, or not authorized to update this item", ports.ErrNotFound)

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListUserOrders returns all orders placed by one user.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListAllOrders returns every order, staff only.
func (s *Service) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// ListVendorOrders returns orders containing the vendor's lines, with
// items projected down to that vendor's own.
func (s *Service) ListVendorOrders(ctx context.Context, vendorEmail string) ([]queries.VendorOrderView, error) {
	return s.vendorOrdersHandler.Handle(ctx, queries.ListVendorOrdersQuery{VendorEmail: vendorEmail})
}

// ListVendorItems returns the vendor's lines flattened across all orders.
func (s *Service) ListVendorItems(ctx context.Context, vendorEmail string) ([]queries.VendorOrderItem, error) {
	return s.vendorItemsHandler.Handle(ctx, queries.ListVendorItemsQuery{VendorEmail: vendorEmail})
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}

func toItemInputs(items []OrderItemPayload) []commands.OrderItemInput {
	inputs := make([]commands.OrderItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, commands.OrderItemInput{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			VendorID:       item.VendorID,
			VendorEmail:    item.VendorEmail,
		})
	}
	return inputs
}
