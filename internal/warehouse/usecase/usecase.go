package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type warehouseUseCase struct {
	repo   warehouse.Repository
	logger logger.ZapLogger
}

func NewWarehouseUseCase(repo warehouse.Repository, log logger.ZapLogger) warehouse.UseCase {
	return &warehouseUseCase{repo: repo, logger: log}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (uc *warehouseUseCase) CreateWarehouse(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	unique, err := uc.repo.IsCodeUnique(ctx, input.MerchantID, code, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, warehouse.ErrCodeTaken
	}

	now := time.Now()
	w := &model.Warehouse{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		MerchantID: input.MerchantID,
		Code:       code,
		Name:       input.Name,
		Address:    optional(input.Address),
		IsActive:   true,
	}
	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}
	return w, nil
}

func (uc *warehouseUseCase) GetWarehouse(ctx context.Context, merchantID, id string) (*model.Warehouse, error) {
	w, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, warehouse.ErrWarehouseNotFound
	}
	return w, nil
}

func (uc *warehouseUseCase) ListWarehouses(ctx context.Context, filters *dto.WarehouseFilters) ([]model.Warehouse, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *warehouseUseCase) UpdateWarehouse(ctx context.Context, input *dto.UpdateWarehouseInput) (*model.Warehouse, error) {
	w, err := uc.GetWarehouse(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code != w.Code {
		unique, err := uc.repo.IsCodeUnique(ctx, input.MerchantID, code, w.ID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, warehouse.ErrCodeTaken
		}
	}

	w.Code = code
	w.Name = input.Name
	w.Address = optional(input.Address)
	w.IsActive = input.IsActive
	w.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update warehouse: %w", err)
	}
	return w, nil
}

// DeleteWarehouse refuses while stock remains; transfer it out first.
func (uc *warehouseUseCase) DeleteWarehouse(ctx context.Context, merchantID, id string) error {
	if _, err := uc.GetWarehouse(ctx, merchantID, id); err != nil {
		return err
	}
	held, err := uc.repo.TotalQuantity(ctx, id)
	if err != nil {
		return err
	}
	if held > 0 {
		uc.logger.Warn("refusing to delete stocked warehouse", zap.String("warehouse_id", id), zap.Int("quantity", held))
		return warehouse.ErrWarehouseNotEmpty
	}
	return uc.repo.Delete(ctx, merchantID, id)
}

func (uc *warehouseUseCase) GetWarehouseStock(ctx context.Context, merchantID, id string) ([]dto.StockLine, error) {
	if _, err := uc.GetWarehouse(ctx, merchantID, id); err != nil {
		return nil, err
	}
	return uc.repo.ListStock(ctx, merchantID, id)
}

func (uc *warehouseUseCase) SetReorderPoint(ctx context.Context, merchantID, warehouseID, productID string, reorderPoint int) (*model.WarehouseStock, error) {
	if _, err := uc.GetWarehouse(ctx, merchantID, warehouseID); err != nil {
		return nil, err
	}
	return uc.repo.SetReorderPoint(ctx, merchantID, warehouseID, productID, reorderPoint)
}
