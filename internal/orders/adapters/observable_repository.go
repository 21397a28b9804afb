package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/marketplace/internal/database"
	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
	"github.com/dejobratic/marketplace/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("operation", "create"),
	)

	start := time.Now()
	err := r.repo.Create(ctx, order)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "create_order", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "get_by_id"),
	)

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "get_order_by_id", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) Replace(ctx context.Context, order domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Replace")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.Int("order.status", int(order.Status)),
		attribute.String("operation", "replace"),
	)

	start := time.Now()
	err := r.repo.Replace(ctx, order)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "replace_order", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Delete")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "delete"),
	)

	start := time.Now()
	err := r.repo.Delete(ctx, id)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "delete_order", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListByUser")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("user.id", userID),
		attribute.String("operation", "list_by_user"),
	)

	start := time.Now()
	orders, err := r.repo.ListByUser(ctx, userID)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_orders_by_user", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) ListByVendor(ctx context.Context, vendorEmail string) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListByVendor")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("vendor.email", vendorEmail),
		attribute.String("operation", "list_by_vendor"),
	)

	start := time.Now()
	orders, err := r.repo.ListByVendor(ctx, vendorEmail)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_orders_by_vendor", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.ListAll")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("operation", "list_all"),
	)

	start := time.Now()
	orders, err := r.repo.ListAll(ctx)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, "list_all_orders", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}
