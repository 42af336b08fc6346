package worker

import (
	"context"
	"log"
	"time"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderWorker consumes placed orders and applies stock decrements.
type OrderWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	publisher    *broker.EventPublisher
	logger       *zap.Logger
}

// NewOrderWorker creates a new order worker
func NewOrderWorker(consumer *broker.Consumer, st *store.Store, publisher *broker.EventPublisher) *OrderWorker {
	w := &OrderWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		store:        st,
		publisher:    publisher,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	return w
}

// Start starts the worker
func (w *OrderWorker) Start(ctx context.Context) error {
	log.Println("Starting order worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OrderWorker) Stop() error {
	log.Println("Stopping order worker...")
	return w.consumer.Close()
}

// handleOrderPlaced decrements stock for each line of a placed order.
// Redelivered events are skipped via the processed-events table.
func (w *OrderWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Skipping already processed event",
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.OrderID))
		return nil
	}

	for _, line := range event.Lines {
		if err := w.store.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			w.logger.Error("Failed to decrement stock",
				zap.String("order_id", event.OrderID),
				zap.String("product_id", line.ProductID),
				zap.Error(err))
			continue
		}

		adjusted := &models.StockAdjustedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeStockAdjusted,
				Timestamp: time.Now(),
			},
			OrderID:   event.OrderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if err := w.publisher.PublishStockAdjusted(ctx, adjusted); err != nil {
			w.logger.Error("Failed to publish StockAdjusted event", zap.Error(err))
		}
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		return err
	}

	util.OrdersProcessedTotal.Inc()
	w.logger.Info("Order processed",
		zap.String("order_id", event.OrderID),
		zap.Int("lines", len(event.Lines)))
	return nil
}
