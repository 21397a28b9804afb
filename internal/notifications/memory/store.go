package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dejobratic/marketplace/internal/notifications"
	"github.com/google/uuid"
)

// Store retains notifications in memory, satisfying the engine's
// Notifier port for tests and local development.
type Store struct {
	mu      sync.RWMutex
	users   []notifications.UserNotification
	vendors []notifications.VendorNotification
}

// NewStore creates a new in-memory notification store.
func NewStore() *Store {
	return &Store{}
}

// NotifyUser records a message addressed to a customer.
func (s *Store) NotifyUser(_ context.Context, userID, email, orderID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, notifications.UserNotification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		OrderID:   orderID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// NotifyVendor records a message addressed to a vendor.
func (s *Store) NotifyVendor(_ context.Context, vendorEmail, vendorID, productName string, availableQuantity int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors = append(s.vendors, notifications.VendorNotification{
		ID:                uuid.NewString(),
		ProductName:       productName,
		AvailableQuantity: availableQuantity,
		VendorEmail:       vendorEmail,
		VendorID:          vendorID,
		Message:           message,
		CreatedAt:         time.Now().UTC(),
	})
	return nil
}

// ListByUser returns notifications addressed to one customer.
func (s *Store) ListByUser(_ context.Context, userID string) ([]notifications.UserNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []notifications.UserNotification
	for _, n := range s.users {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

// ListByVendor returns notifications addressed to one vendor.
func (s *Store) ListByVendor(_ context.Context, vendorEmail string) ([]notifications.VendorNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []notifications.VendorNotification
	for _, n := range s.vendors {
		if n.VendorEmail == vendorEmail {
			result = append(result, n)
		}
	}
	return result, nil
}

// ListCancelRequests returns the staff-facing advisory cancellation
// requests across all users.
func (s *Store) ListCancelRequests(_ context.Context) ([]notifications.UserNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []notifications.UserNotification
	for _, n := range s.users {
		if strings.Contains(n.Message, notifications.CancelRequestMarker) {
			result = append(result, n)
		}
	}
	return result, nil
}
