package commands

import (
	"context"
	"log/slog"

	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/metrics"
	"github.com/dejobratic/marketplace/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// CancelHandler is what the observable wrapper decorates.
type CancelHandler interface {
	Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error)
}

type ObservableCancelHandler struct {
	handler CancelHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCancelHandler(handler CancelHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCancelHandler {
	return &ObservableCancelHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCancelHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CancelOrderCommand.Handle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", cmd.OrderID),
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		o.metrics.RecordOrderCancelled(ctx, false)
		telemetry.RecordSpanError(span, err)
		o.logger.WarnContext(ctx, "order cancellation refused",
			"order_id", cmd.OrderID,
			"error", err,
		)
		return nil, err
	}

	o.metrics.RecordOrderCancelled(ctx, true)
	o.logger.InfoContext(ctx, "order cancelled",
		"order_id", order.ID,
		"note", cmd.Note,
	)
	telemetry.SetSpanSuccess(span)

	return order, nil
}
