//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dejobratic/marketplace/internal/database"
	"github.com/dejobratic/marketplace/internal/orders/adapters/postgres"
	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testpostgres.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	projectRoot := findProjectRoot(t)
	migrationsPath := filepath.Join(projectRoot, "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func sampleOrder(id, userID string) domain.Order {
	order := domain.Order{
		ID:              id,
		UserID:          userID,
		Email:           userID + "@example.com",
		Status:          domain.StatusPending,
		DeliveryAddress: "1 Main St",
		PaymentMethod:   domain.CashOnDelivery,
		Items: []domain.OrderItem{
			domain.NewOrderItem("prod-a", "Product A", 3, 500, "v-1", "vendor-a@example.com"),
			domain.NewOrderItem("prod-b", "Product B", 2, 250, "v-2", "vendor-b@example.com"),
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	order.RecalculateTotal()
	return order
}

func TestRepositoryCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := sampleOrder("test-order-1", "user-1")

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}

	if retrieved.ID != order.ID {
		t.Errorf("expected ID %s, got %s", order.ID, retrieved.ID)
	}
	if retrieved.TotalCents != order.TotalCents {
		t.Errorf("expected total %d, got %d", order.TotalCents, retrieved.TotalCents)
	}
	if len(retrieved.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(retrieved.Items))
	}
	if retrieved.Items[0].VendorEmail != "vendor-a@example.com" {
		t.Errorf("item payload lost vendor email: %+v", retrieved.Items[0])
	}
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepositoryReplace(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := sampleOrder("test-order-2", "user-1")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	order.Status = domain.StatusCancelled
	order.Note = "customer request"
	order.Items = order.Items[:1]
	order.RecalculateTotal()
	order.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := repo.Replace(ctx, order); err != nil {
		t.Fatalf("failed to replace order: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if retrieved.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled status, got %d", retrieved.Status)
	}
	if retrieved.Note != "customer request" {
		t.Errorf("expected note persisted, got %q", retrieved.Note)
	}
	if len(retrieved.Items) != 1 {
		t.Errorf("expected item list replaced wholesale, got %d items", len(retrieved.Items))
	}
}

func TestRepositoryReplace_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)

	order := sampleOrder("never-created", "user-1")
	if err := repo.Replace(context.Background(), order); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := sampleOrder("test-order-3", "user-1")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Fatalf("failed to delete order: %v", err)
	}

	if _, err := repo.GetByID(ctx, order.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got: %v", err)
	}

	if err := repo.Delete(ctx, order.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got: %v", err)
	}
}

func TestRepositoryListByUser(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	first := sampleOrder("user-order-1", "user-a")
	first.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	second := sampleOrder("user-order-2", "user-a")
	other := sampleOrder("user-order-3", "user-b")

	for _, order := range []domain.Order{first, second, other} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order %s: %v", order.ID, err)
		}
	}

	orders, err := repo.ListByUser(ctx, "user-a")
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "user-order-1" {
		t.Errorf("expected oldest first, got %s", orders[0].ID)
	}
}

func TestRepositoryListByVendor(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	shared := sampleOrder("vendor-order-1", "user-a")

	soloVendorB := sampleOrder("vendor-order-2", "user-b")
	soloVendorB.Items = []domain.OrderItem{
		domain.NewOrderItem("prod-b", "Product B", 1, 250, "v-2", "vendor-b@example.com"),
	}
	soloVendorB.RecalculateTotal()

	for _, order := range []domain.Order{shared, soloVendorB} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order %s: %v", order.ID, err)
		}
	}

	orders, err := repo.ListByVendor(ctx, "vendor-a@example.com")
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}

	if len(orders) != 1 {
		t.Fatalf("expected 1 order for vendor-a, got %d", len(orders))
	}
	if orders[0].ID != "vendor-order-1" {
		t.Errorf("expected vendor-order-1, got %s", orders[0].ID)
	}
	// containment match returns the full order; projection happens upstream
	if len(orders[0].Items) != 2 {
		t.Errorf("expected full item list, got %d items", len(orders[0].Items))
	}

	orders, err = repo.ListByVendor(ctx, "vendor-b@example.com")
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("expected 2 orders for vendor-b, got %d", len(orders))
	}
}

func TestRepositoryListAll(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	for _, id := range []string{"all-1", "all-2", "all-3"} {
		if err := repo.Create(ctx, sampleOrder(id, "user-a")); err != nil {
			t.Fatalf("failed to create order %s: %v", id, err)
		}
	}

	orders, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(orders) != 3 {
		t.Errorf("expected 3 orders, got %d", len(orders))
	}
}
