package kafka

import (
	"context"
	"log/slog"
)

// NoopEventBus logs events without sending them to Kafka. Useful for local dev before wiring Kafka.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderCreated(_ context.Context, orderID string) error {
	slog.Debug("event::order_created", "order_id", orderID)
	return nil
}

func (n *NoopEventBus) PublishOrderCancelled(_ context.Context, orderID string, reason string) error {
	slog.Debug("event::order_cancelled", "order_id", orderID, "reason", reason)
	return nil
}

func (n *NoopEventBus) PublishOrderDelivered(_ context.Context, orderID string) error {
	slog.Debug("event::order_delivered", "order_id", orderID)
	return nil
}
