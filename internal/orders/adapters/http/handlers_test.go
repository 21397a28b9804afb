package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	idemmemory "github.com/dejobratic/marketplace/internal/idempotency/memory"
	"github.com/dejobratic/marketplace/internal/inventory"
	invmemory "github.com/dejobratic/marketplace/internal/inventory/memory"
	"github.com/dejobratic/marketplace/internal/kafka"
	notifmemory "github.com/dejobratic/marketplace/internal/notifications/memory"
	"github.com/dejobratic/marketplace/internal/orders/adapters"
	httpadapter "github.com/dejobratic/marketplace/internal/orders/adapters/http"
	"github.com/dejobratic/marketplace/internal/orders/adapters/memory"
	"github.com/dejobratic/marketplace/internal/orders/app"
	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/metrics"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func newTestServer(t *testing.T, seed ...domain.Order) (*httptest.Server, *memory.Repository, *invmemory.Store) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	m, err := metrics.NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	repo := memory.NewRepository()
	for _, order := range seed {
		if err := repo.Create(context.Background(), order); err != nil {
			t.Fatalf("failed to seed order: %v", err)
		}
	}

	products := invmemory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := app.NewService(
		repo,
		adapters.NewInventoryAdapter(products),
		notifmemory.NewStore(),
		kafka.NewNoopEventBus(),
		idemmemory.NewStore(),
		logger,
		m,
	)

	mux := http.NewServeMux()
	httpadapter.NewHandler(service).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, repo, products
}

func doRequest(t *testing.T, method, url, role, userID, email string, body string, extraHeaders map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
		req.Header.Set("X-User-Email", email)
		req.Header.Set("X-User-Role", role)
	}
	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func seededOrder() domain.Order {
	order := domain.Order{
		ID:        "order-1",
		UserID:    "user-1",
		Email:     "buyer@example.com",
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		Items: []domain.OrderItem{
			domain.NewOrderItem("prod-a", "Product A", 3, 500, "v-1", "vendor-a@example.com"),
			domain.NewOrderItem("prod-b", "Product B", 2, 250, "v-2", "vendor-b@example.com"),
		},
	}
	order.RecalculateTotal()
	return order
}

func TestCreateOrderEndpoint(t *testing.T) {
	t.Run("creates order and replays response for duplicate key", func(t *testing.T) {
		server, _, products := newTestServer(t)
		if err := products.Create(context.Background(), inventory.Product{ID: "prod-a", AvailableQuantity: 20, VendorEmail: "vendor-a@example.com"}); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}

		body := `{
			"delivery_address": "1 Main St",
			"payment_method": 1,
			"order_items": [
				{"product_id": "prod-a", "product_name": "Product A", "quantity": 3, "unit_price_cents": 500, "vendor_id": "v-1", "vendor_email": "vendor-a@example.com"}
			]
		}`

		headers := map[string]string{"Idempotency-Key": "key-1"}
		resp := doRequest(t, http.MethodPost, server.URL+"/v1/orders", "Customer", "user-1", "buyer@example.com", body, headers)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var first struct {
			Order domain.Order `json:"order"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if first.Order.UserID != "user-1" {
			t.Errorf("expected owner from headers, got %s", first.Order.UserID)
		}

		replay := doRequest(t, http.MethodPost, server.URL+"/v1/orders", "Customer", "user-1", "buyer@example.com", body, headers)
		if replay.StatusCode != http.StatusCreated {
			t.Fatalf("expected replayed 201, got %d", replay.StatusCode)
		}
		var second struct {
			Order domain.Order `json:"order"`
		}
		if err := json.NewDecoder(replay.Body).Decode(&second); err != nil {
			t.Fatalf("failed to decode replay: %v", err)
		}
		if second.Order.ID != first.Order.ID {
			t.Errorf("expected replayed order %s, got %s", first.Order.ID, second.Order.ID)
		}
	})

	t.Run("requires idempotency key", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		resp := doRequest(t, http.MethodPost, server.URL+"/v1/orders", "Customer", "user-1", "buyer@example.com", `{}`, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("requires caller identity", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		resp := doRequest(t, http.MethodPost, server.URL+"/v1/orders", "", "", "", `{}`, map[string]string{"Idempotency-Key": "k"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	t.Run("vendor sees only its own lines", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodGet, server.URL+"/v1/orders/order-1", "Vendor", "v-1", "vendor-a@example.com", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var payload struct {
			Order domain.Order `json:"order"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(payload.Order.Items) != 1 {
			t.Fatalf("expected 1 visible item, got %d", len(payload.Order.Items))
		}
		if payload.Order.Items[0].VendorEmail != "vendor-a@example.com" {
			t.Errorf("leaked another vendor's line: %+v", payload.Order.Items[0])
		}
	})

	t.Run("unrelated customer gets 404", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodGet, server.URL+"/v1/orders/order-1", "Customer", "stranger", "s@example.com", "", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("missing order maps to 404", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		resp := doRequest(t, http.MethodGet, server.URL+"/v1/orders/ghost", "Admin", "admin-1", "a@example.com", "", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestStaffOnlyEndpoints(t *testing.T) {
	t.Run("customer cannot list all orders", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodGet, server.URL+"/v1/orders/all", "Customer", "user-1", "buyer@example.com", "", nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("customer service representative can cancel", func(t *testing.T) {
		server, repo, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodPost, server.URL+"/v1/orders/order-1/cancel", "Customer Service Representative", "csr-1", "csr@example.com", `{"note":"requested"}`, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		order, err := repo.GetByID(context.Background(), "order-1")
		if err != nil {
			t.Fatalf("failed to reload order: %v", err)
		}
		if order.Status != domain.StatusCancelled {
			t.Errorf("expected cancelled, got %d", order.Status)
		}
	})

	t.Run("cancelling a dispatched order maps to 409", func(t *testing.T) {
		order := seededOrder()
		order.Status = domain.StatusDispatched
		server, _, _ := newTestServer(t, order)

		resp := doRequest(t, http.MethodPost, server.URL+"/v1/orders/order-1/cancel", "Admin", "admin-1", "a@example.com", `{}`, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})
}

func TestUpdateOrderEndpoint(t *testing.T) {
	t.Run("non-owner maps to 403", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		body := `{"order_items":[{"product_id":"prod-a","quantity":1}]}`
		resp := doRequest(t, http.MethodPut, server.URL+"/v1/orders/order-1", "Customer", "someone-else", "o@example.com", body, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})
}

func TestUpdateOrderItemStatusEndpoint(t *testing.T) {
	t.Run("customer role is rejected", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodPatch, server.URL+"/v1/orders/order-1/items/prod-a/status", "Customer", "user-1", "buyer@example.com", `{"order_item_status":1}`, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("vendor updates own line", func(t *testing.T) {
		server, repo, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodPatch, server.URL+"/v1/orders/order-1/items/prod-a/status", "Vendor", "v-1", "vendor-a@example.com", `{"order_item_status":1}`, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		order, err := repo.GetByID(context.Background(), "order-1")
		if err != nil {
			t.Fatalf("failed to reload order: %v", err)
		}
		if order.Items[0].Status != domain.ItemDispatched {
			t.Errorf("expected item dispatched, got %d", order.Items[0].Status)
		}
	})

	t.Run("another vendor's line maps to 404", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodPatch, server.URL+"/v1/orders/order-1/items/prod-b/status", "Vendor", "v-1", "vendor-a@example.com", `{"order_item_status":1}`, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestVendorQueryEndpoints(t *testing.T) {
	t.Run("vendor order items are flattened and scoped", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodGet, server.URL+"/v1/vendor/order-items", "Vendor", "v-2", "vendor-b@example.com", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var payload struct {
			Items []struct {
				ProductID string `json:"product_id"`
				OrderID   string `json:"order_id"`
			} `json:"order_items"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(payload.Items) != 1 || payload.Items[0].ProductID != "prod-b" {
			t.Fatalf("expected single prod-b line, got %+v", payload.Items)
		}
	})

	t.Run("customer cannot use vendor endpoints", func(t *testing.T) {
		server, _, _ := newTestServer(t, seededOrder())

		resp := doRequest(t, http.MethodGet, server.URL+"/v1/vendor/orders", "Customer", "user-1", "buyer@example.com", "", nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})
}
