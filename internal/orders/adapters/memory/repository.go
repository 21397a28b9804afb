package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := cloneOrder(order)
	return &copy, nil
}

// Replace overwrites the whole order document.
func (r *Repository) Replace(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return ports.ErrNotFound
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// Delete removes an order by identifier.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// ListByUser returns orders placed by one user, oldest first.
func (r *Repository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, cloneOrder(order))
		}
	}
	sortByCreation(result)
	return result, nil
}

// ListByVendor returns orders containing at least one line belonging to
// the vendor, oldest first. Items are not filtered here; projection is
// the query layer's concern.
func (r *Repository) ListByVendor(_ context.Context, vendorEmail string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		for _, item := range order.Items {
			if item.VendorEmail == vendorEmail {
				result = append(result, cloneOrder(order))
				break
			}
		}
	}
	sortByCreation(result)
	return result, nil
}

// ListAll returns every order, oldest first.
func (r *Repository) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		result = append(result, cloneOrder(order))
	}
	sortByCreation(result)
	return result, nil
}

func sortByCreation(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}
