package order

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
)

type Repository interface {
	// Create reserves stock for every line, writes the order with its items
	// and first status event, and appends the sale entries to the inventory
	// ledger. Nothing is written if any line lacks stock.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	History(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error)
	// UpdateStatus moves order from its current status to event.Status. With
	// restock set the reserved quantities go back to the catalog.
	UpdateStatus(ctx context.Context, order *model.Order, event *model.OrderStatusEvent, restock bool) error
}

type UseCase interface {
	Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Order, error)
	GetOrder(ctx context.Context, viewer dto.Viewer, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	TrackOrder(ctx context.Context, viewer dto.Viewer, id string) ([]model.OrderStatusEvent, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
}
