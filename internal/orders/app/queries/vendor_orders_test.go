package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/dejobratic/marketplace/internal/orders/adapters/memory"
	"github.com/dejobratic/marketplace/internal/orders/app/queries"
	"github.com/dejobratic/marketplace/internal/orders/domain"
)

func seedSharedOrders(t *testing.T, repo *memory.Repository) {
	t.Helper()
	ctx := context.Background()

	orders := []domain.Order{
		{
			ID:     "order-1",
			UserID: "user-1",
			Email:  "user1@example.com",
			Status: domain.StatusPending,
			Items: []domain.OrderItem{
				domain.NewOrderItem("prod-a", "Product A", 2, 500, "v-1", "vendor-a@example.com"),
				domain.NewOrderItem("prod-b", "Product B", 1, 300, "v-2", "vendor-b@example.com"),
			},
			CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		},
		{
			ID:     "order-2",
			UserID: "user-2",
			Email:  "user2@example.com",
			Status: domain.StatusDispatched,
			Items: []domain.OrderItem{
				domain.NewOrderItem("prod-c", "Product C", 4, 100, "v-1", "vendor-a@example.com"),
			},
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		},
		{
			ID:     "order-3",
			UserID: "user-3",
			Email:  "user3@example.com",
			Status: domain.StatusPending,
			Items: []domain.OrderItem{
				domain.NewOrderItem("prod-b", "Product B", 2, 300, "v-2", "vendor-b@example.com"),
			},
			CreatedAt: time.Now().UTC(),
		},
	}

	for _, order := range orders {
		order.RecalculateTotal()
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to seed order %s: %v", order.ID, err)
		}
	}
}

func TestListVendorOrders(t *testing.T) {
	t.Run("projects orders down to the vendor's own lines", func(t *testing.T) {
		repo := memory.NewRepository()
		seedSharedOrders(t, repo)
		handler := queries.NewListVendorOrdersQueryHandler(repo)

		views, err := handler.Handle(context.Background(), queries.ListVendorOrdersQuery{VendorEmail: "vendor-a@example.com"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if len(views) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(views))
		}

		for _, view := range views {
			for _, item := range view.Items {
				if item.VendorEmail != "vendor-a@example.com" {
					t.Errorf("order %s leaked another vendor's line: %s", view.OrderID, item.ProductID)
				}
			}
		}

		// order-1 holds two vendors' lines but only one is visible
		if views[0].OrderID != "order-1" {
			t.Fatalf("expected order-1 first, got %s", views[0].OrderID)
		}
		if len(views[0].Items) != 1 {
			t.Errorf("expected 1 visible item in order-1, got %d", len(views[0].Items))
		}
	})

	t.Run("returns empty for vendor with no lines", func(t *testing.T) {
		repo := memory.NewRepository()
		seedSharedOrders(t, repo)
		handler := queries.NewListVendorOrdersQueryHandler(repo)

		views, err := handler.Handle(context.Background(), queries.ListVendorOrdersQuery{VendorEmail: "nobody@example.com"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if len(views) != 0 {
			t.Errorf("expected no orders, got %d", len(views))
		}
	})

	t.Run("returns validation error when vendor email is empty", func(t *testing.T) {
		handler := queries.NewListVendorOrdersQueryHandler(memory.NewRepository())

		_, err := handler.Handle(context.Background(), queries.ListVendorOrdersQuery{})
		if err == nil {
			t.Fatal("expected validation error, got nil")
		}
		if err.Error() != "vendor_email is required" {
			t.Errorf("expected 'vendor_email is required', got %v", err)
		}
	})
}

func TestListVendorItems(t *testing.T) {
	t.Run("flattens the vendor's lines with order context", func(t *testing.T) {
		repo := memory.NewRepository()
		seedSharedOrders(t, repo)
		handler := queries.NewListVendorItemsQueryHandler(repo)

		items, err := handler.Handle(context.Background(), queries.ListVendorItemsQuery{VendorEmail: "vendor-b@example.com"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}

		first := items[0]
		if first.OrderID != "order-1" {
			t.Errorf("expected first item from order-1, got %s", first.OrderID)
		}
		if first.ProductID != "prod-b" {
			t.Errorf("expected prod-b, got %s", first.ProductID)
		}
		if first.LineTotalCents != 300 {
			t.Errorf("expected line total 300, got %d", first.LineTotalCents)
		}
		if first.OrderStatus != domain.StatusPending {
			t.Errorf("expected order status %d, got %d", domain.StatusPending, first.OrderStatus)
		}
	})

	t.Run("returns validation error when vendor email is empty", func(t *testing.T) {
		handler := queries.NewListVendorItemsQueryHandler(memory.NewRepository())

		_, err := handler.Handle(context.Background(), queries.ListVendorItemsQuery{})
		if err == nil {
			t.Fatal("expected validation error, got nil")
		}
	})
}
