package inventory

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	// ApplyAdjustment moves stock by adj.Delta and appends adj to the ledger in
	// one transaction, filling PreviousStock and NewStock. A delta that would
	// take stock below zero fails with ErrInsufficientStock and writes nothing.
	ApplyAdjustment(ctx context.Context, adj *model.InventoryAdjustment) error
	// Transfer applies both ledger legs between warehouses atomically.
	Transfer(ctx context.Context, out, in *model.InventoryAdjustment) error
	ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]dto.LowStockItem, int, error)
}
