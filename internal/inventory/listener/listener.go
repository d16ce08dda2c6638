package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/broker"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

const retryDelay = time.Second

// InventoryListener consumes order events. Storefront checkouts already moved
// stock, so events only touch inventory when they ask for it through
// DeductOnConsume (orders placed by other services, such as the POS).
type InventoryListener struct {
	consumer broker.Reader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer broker.Reader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled.
func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("Stopping Inventory Kafka Listener")
				return
			}
			l.logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				l.logger.Info("Stopping Inventory Kafka Listener")
				return
			case <-time.After(retryDelay):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event model.OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	var sign int
	var reason string
	switch event.EventType {
	case model.EventOrderCreated:
		sign, reason = -1, model.ReasonSale
	case model.EventOrderCancelled:
		sign, reason = 1, model.ReasonOrderCancelled
	default:
		return
	}

	log := l.logger.With(
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.Payload.ID),
	)
	if !event.DeductOnConsume {
		log.Debug("order event acknowledged, stock already settled at checkout")
		return
	}
	log.Info("Processing order event")

	var warehouseID *string
	if event.Payload.WarehouseID != "" {
		warehouseID = &event.Payload.WarehouseID
	}

	for _, item := range event.Payload.Items {
		if item.Quantity <= 0 {
			continue
		}
		_, err := l.uc.AdjustStock(ctx, &dto.AdjustStockInput{
			MerchantID:    event.Payload.MerchantID,
			ProductID:     item.ProductID,
			WarehouseID:   warehouseID,
			Delta:         sign * item.Quantity,
			Reason:        reason,
			ReferenceType: "order",
			ReferenceID:   event.Payload.ID,
			Notes:         "order event " + event.EventID,
		})
		if err != nil {
			log.Error("Failed to adjust inventory for order item",
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}
