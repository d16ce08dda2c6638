package warehouse

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse/dto"
)

type UseCase interface {
	CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error)
	GetWarehouse(ctx context.Context, merchantID, id string) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, int, error)
	UpdateWarehouse(ctx context.Context, input *dto.UpdateWarehouseInput) (*model.Warehouse, error)
	DeleteWarehouse(ctx context.Context, merchantID, id string) error
	GetWarehouseStock(ctx context.Context, merchantID, id string) ([]dto.StockLine, error)
	SetReorderPoint(ctx context.Context, merchantID, warehouseID, productID string, reorderPoint int) (*model.WarehouseStock, error)
}
