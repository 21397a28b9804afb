package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/marketplace/internal/inventory"
)

// Store provides an in-memory product store useful for local development and tests.
type Store struct {
	mu       sync.RWMutex
	products map[string]inventory.Product
}

// NewStore constructs a new in-memory product store.
func NewStore() *Store {
	return &Store{products: make(map[string]inventory.Product)}
}

// GetByID fetches a single product by identifier. Missing products
// yield (nil, nil).
func (s *Store) GetByID(_ context.Context, id string) (*inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	copy := product
	return &copy, nil
}

// Create stores a new product.
func (s *Store) Create(_ context.Context, product inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

// Update persists the full replacement of a product document.
func (s *Store) Update(_ context.Context, product inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}
