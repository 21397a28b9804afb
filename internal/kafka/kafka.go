package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderDelivered = "order.delivered"
)

// EventBus publishes order lifecycle events to Kafka. One writer is
// shared across topics; the topic is set per message.
type EventBus struct {
	writer *kafka.Writer
}

// NewEventBus connects a publisher to the given brokers, comma separated.
func NewEventBus(brokersCSV string) *EventBus {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &EventBus{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

type orderCreatedEvent struct {
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type orderCancelledEvent struct {
	OrderID    string    `json:"order_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

type orderDeliveredEvent struct {
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (b *EventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return b.publish(ctx, TopicOrderCreated, orderID, orderCreatedEvent{
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) PublishOrderCancelled(ctx context.Context, orderID string, reason string) error {
	return b.publish(ctx, TopicOrderCancelled, orderID, orderCancelledEvent{
		OrderID:    orderID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) PublishOrderDelivered(ctx context.Context, orderID string) error {
	return b.publish(ctx, TopicOrderDelivered, orderID, orderDeliveredEvent{
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	})
}

// publish keys messages by order ID so events for one order land on one
// partition in order.
func (b *EventBus) publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

// Close flushes and shuts down the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}
