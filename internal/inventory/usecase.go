package inventory

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UseCase interface {
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryAdjustment, error)
	TransferStock(ctx context.Context, input *dto.TransferStockInput) ([]model.InventoryAdjustment, error)
	ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]dto.LowStockItem, int, error)
}
