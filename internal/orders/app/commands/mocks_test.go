package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dejobratic/marketplace/internal/inventory"
	"github.com/dejobratic/marketplace/internal/orders/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRepository struct {
	createFn   func(ctx context.Context, order domain.Order) error
	getByIDFn  func(ctx context.Context, id string) (*domain.Order, error)
	replaceFn  func(ctx context.Context, order domain.Order) error
	deleteFn   func(ctx context.Context, id string) error
	replaced   []domain.Order
	replacedMu sync.Mutex
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRepository) Replace(ctx context.Context, order domain.Order) error {
	m.replacedMu.Lock()
	m.replaced = append(m.replaced, order)
	m.replacedMu.Unlock()
	if m.replaceFn != nil {
		return m.replaceFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) lastReplaced() *domain.Order {
	m.replacedMu.Lock()
	defer m.replacedMu.Unlock()
	if len(m.replaced) == 0 {
		return nil
	}
	order := m.replaced[len(m.replaced)-1]
	return &order
}

// fakeInventory backs the stock adjuster with a plain map so tests can
// assert resulting quantities.
type fakeInventory struct {
	mu       sync.Mutex
	products map[string]inventory.Product
}

func newFakeInventory(products ...inventory.Product) *fakeInventory {
	inv := &fakeInventory{products: make(map[string]inventory.Product)}
	for _, p := range products {
		inv.products[p.ID] = p
	}
	return inv
}

func (f *fakeInventory) GetProduct(_ context.Context, id string) (*inventory.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	copy := product
	return &copy, nil
}

func (f *fakeInventory) UpdateProduct(_ context.Context, product inventory.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeInventory) quantity(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].AvailableQuantity
}

type mockEventBus struct {
	publishOrderCreatedFn   func(ctx context.Context, orderID string) error
	publishOrderCancelledFn func(ctx context.Context, orderID string, reason string) error
	publishOrderDeliveredFn func(ctx context.Context, orderID string) error
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	if m.publishOrderCreatedFn != nil {
		return m.publishOrderCreatedFn(ctx, orderID)
	}
	return nil
}

func (m *mockEventBus) PublishOrderCancelled(ctx context.Context, orderID string, reason string) error {
	if m.publishOrderCancelledFn != nil {
		return m.publishOrderCancelledFn(ctx, orderID, reason)
	}
	return nil
}

func (m *mockEventBus) PublishOrderDelivered(ctx context.Context, orderID string) error {
	if m.publishOrderDeliveredFn != nil {
		return m.publishOrderDeliveredFn(ctx, orderID)
	}
	return nil
}

type mockNotifier struct {
	notifyUserFn func(ctx context.Context, userID, email, orderID, message string) error
	mu           sync.Mutex
	userMessages []string
}

func (m *mockNotifier) NotifyUser(ctx context.Context, userID, email, orderID, message string) error {
	m.mu.Lock()
	m.userMessages = append(m.userMessages, message)
	m.mu.Unlock()
	if m.notifyUserFn != nil {
		return m.notifyUserFn(ctx, userID, email, orderID, message)
	}
	return nil
}

func (m *mockNotifier) NotifyVendor(ctx context.Context, vendorEmail, vendorID, productName string, availableQuantity int, message string) error {
	return nil
}

func (m *mockNotifier) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.userMessages...)
}
