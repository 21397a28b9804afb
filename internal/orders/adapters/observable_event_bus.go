package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/marketplace/internal/kafka"
	"github.com/dejobratic/marketplace/internal/orders/ports"
	"github.com/dejobratic/marketplace/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderCreated")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "order.created"),
		attribute.String("topic", "order.created"),
	)

	start := time.Now()
	err := e.bus.PublishOrderCreated(ctx, orderID)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order.created", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderCancelled(ctx context.Context, orderID string, reason string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderCancelled")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "order.cancelled"),
		attribute.String("topic", "order.cancelled"),
		attribute.String("cancel.reason", reason),
	)

	start := time.Now()
	err := e.bus.PublishOrderCancelled(ctx, orderID, reason)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order.cancelled", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderDelivered(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderDelivered")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "order.delivered"),
		attribute.String("topic", "order.delivered"),
	)

	start := time.Now()
	err := e.bus.PublishOrderDelivered(ctx, orderID)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order.delivered", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
