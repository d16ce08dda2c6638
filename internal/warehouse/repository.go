package warehouse

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse/dto"
)

type Repository interface {
	Create(ctx context.Context, w *model.Warehouse) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Warehouse, error)
	FindAll(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, int, error)
	Update(ctx context.Context, w *model.Warehouse) error
	Delete(ctx context.Context, merchantID, id string) error
	IsCodeUnique(ctx context.Context, merchantID, code, excludeID string) (bool, error)

	// TotalQuantity sums every product held in the warehouse.
	TotalQuantity(ctx context.Context, warehouseID string) (int, error)
	ListStock(ctx context.Context, merchantID, warehouseID string) ([]dto.StockLine, error)
	SetReorderPoint(ctx context.Context, merchantID, warehouseID, productID string, reorderPoint int) (*model.WarehouseStock, error)
}
