package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/pkg/broker"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type orderUseCase struct {
	repo      order.Repository
	carts     cart.UseCase
	cache     cache.Store
	publisher broker.Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewOrderUseCase wires checkout to the cart and the event stream. publisher
// may be nil, in which case no order events are emitted.
func NewOrderUseCase(repo order.Repository, carts cart.UseCase, store cache.Store, publisher broker.Publisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		carts:     carts,
		cache:     store,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *orderUseCase) Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Order, error) {
	view, err := uc.carts.GetCart(ctx, input.MerchantID, input.CartID)
	if err != nil {
		return nil, err
	}
	if len(view.Cart.Items) == 0 {
		return nil, cart.ErrCartEmpty
	}

	now := uc.now()
	o := &model.Order{
		BaseModel:          model.BaseModel{ID: uuid.New().String()},
		MerchantID:         input.MerchantID,
		UserID:             input.UserID,
		OrderNumber:        order.NewOrderNumber(now),
		Status:             model.OrderStatusPending,
		Subtotal:           view.Totals.Subtotal,
		Discount:           view.Totals.Discount,
		Shipping:           view.Totals.Shipping,
		Tax:                view.Totals.Tax,
		Total:              view.Totals.FinalTotal,
		ShippingName:       input.Shipping.Name,
		ShippingLine1:      input.Shipping.Line1,
		ShippingCity:       input.Shipping.City,
		ShippingPostalCode: input.Shipping.PostalCode,
		ShippingCountry:    input.Shipping.Country,
	}
	if view.Totals.Discount.IsPositive() && view.Cart.PromoCode != "" {
		code := view.Cart.PromoCode
		o.PromoCode = &code
	}
	for _, item := range view.Cart.Items {
		o.Items = append(o.Items, model.OrderItem{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	actor := input.UserID
	o.History = []model.OrderStatusEvent{{
		OrderID:   o.ID,
		Status:    model.OrderStatusPending,
		Note:      "order placed",
		CreatedBy: &actor,
		CreatedAt: now,
	}}

	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("merchant_id", o.MerchantID),
		zap.String("total", o.Total.StringFixed(2)))

	if err := uc.carts.Clear(ctx, input.MerchantID, input.CartID); err != nil {
		uc.logger.Warn("failed to clear cart after checkout", zap.String("cart_id", input.CartID), zap.Error(err))
	}
	uc.invalidateCatalog(ctx, o.MerchantID)
	uc.publish(ctx, model.EventOrderCreated, o)
	return o, nil
}

func (uc *orderUseCase) invalidateCatalog(ctx context.Context, merchantID string) {
	if err := uc.cache.DeletePattern(ctx, product.ListCachePattern(merchantID)); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
}

// publish emits an order event. Failures are logged, the order already stands.
func (uc *orderUseCase) publish(ctx context.Context, eventType string, o *model.Order) {
	if uc.publisher == nil {
		return
	}
	event := model.OrderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: uc.now().UTC(),
		Payload: model.OrderPayload{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			MerchantID:  o.MerchantID,
			UserID:      o.UserID,
			Status:      o.Status,
			Total:       o.Total.StringFixed(2),
		},
	}
	for _, item := range o.Items {
		event.Payload.Items = append(event.Payload.Items, model.OrderItemPayload{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	data, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to encode order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(ctx, o.ID, data); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
}

// visible loads an order the viewer may see. Other customers' orders look
// like missing ones.
func (uc *orderUseCase) visible(ctx context.Context, viewer dto.Viewer, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, viewer.MerchantID, id)
	if err != nil {
		return nil, err
	}
	if o == nil || (!viewer.Staff && o.UserID != viewer.UserID) {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, viewer dto.Viewer, id string) (*model.Order, error) {
	o, err := uc.visible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	history, err := uc.repo.History(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.History = history
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	if filters.Status != "" && !order.ValidStatus(filters.Status) {
		return nil, 0, order.ErrInvalidStatus
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) TrackOrder(ctx context.Context, viewer dto.Viewer, id string) ([]model.OrderStatusEvent, error) {
	o, err := uc.visible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return uc.repo.History(ctx, o.ID)
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	if !order.ValidStatus(input.Status) {
		return nil, order.ErrInvalidStatus
	}
	o, err := uc.repo.FindByID(ctx, input.MerchantID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}
	if !order.CanTransition(o.Status, input.Status) {
		return nil, &order.TransitionError{From: o.Status, To: input.Status}
	}

	ev := &model.OrderStatusEvent{
		Status:    input.Status,
		Note:      input.Note,
		CreatedAt: uc.now(),
	}
	if input.ActorID != "" {
		actor := input.ActorID
		ev.CreatedBy = &actor
	}
	from := o.Status
	cancelling := input.Status == model.OrderStatusCancelled
	if err := uc.repo.UpdateStatus(ctx, o, ev, cancelling); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	uc.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", from),
		zap.String("to", o.Status))

	if cancelling {
		uc.invalidateCatalog(ctx, o.MerchantID)
		uc.publish(ctx, model.EventOrderCancelled, o)
	}

	history, err := uc.repo.History(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.History = history
	return o, nil
}
