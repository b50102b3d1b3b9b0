package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/messaging"
	ordersvc "github.com/almada-laundry/almada/internal/service/order"
	"github.com/almada-laundry/almada/internal/worker"
)

var workerTracer = otel.Tracer("github.com/almada-laundry/almada/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewStatusChangedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewStatusChangedHandler sets up a worker handler reacting to order status
// changes, so customer notifications run outside the request path.
func NewStatusChangedHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.status_changed", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.StatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode status change", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		logger.Info("order status changed",
			zap.Int64("id", event.ID),
			zap.String("barcode", event.Barcode),
			zap.String("from", event.From),
			zap.String("to", event.To),
		)

		switch entity.Status(event.To) {
		case entity.StatusReadyPicked:
			logger.Info("order ready for pickup, customer should be notified",
				zap.String("barcode", event.Barcode))
		case entity.StatusCompleted, entity.StatusCancelled:
			logger.Info("order moved to history",
				zap.String("barcode", event.Barcode),
				zap.String("status", event.To))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
