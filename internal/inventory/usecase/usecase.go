package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type inventoryUseCase struct {
	repo   inventory.Repository
	locker cache.Locker
	cache  cache.Store
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, locker cache.Locker, store cache.Store, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		locker: locker,
		cache:  store,
		logger: log,
	}
}

func lockKey(merchantID, productID string, warehouseID *string) string {
	key := fmt.Sprintf("lock:inventory:%s:%s", merchantID, productID)
	if warehouseID != nil {
		key += ":" + *warehouseID
	}
	return key
}

// acquire takes every key or none. Keys are locked in sorted order so two
// transfers in opposite directions cannot deadlock.
func (uc *inventoryUseCase) acquire(ctx context.Context, keys ...string) (func(), error) {
	sort.Strings(keys)
	value := uuid.New().String()
	held := make([]string, 0, len(keys))

	release := func() {
		for _, k := range held {
			if err := uc.locker.ReleaseLock(context.Background(), k, value); err != nil {
				uc.logger.Warn("failed to release inventory lock", zap.String("key", k), zap.Error(err))
			}
		}
	}

	for _, key := range keys {
		acquired := false
		for i := 0; i < lockAttempts; i++ {
			ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
			if err != nil {
				uc.logger.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			select {
			case <-ctx.Done():
				release()
				return nil, ctx.Err()
			case <-time.After(lockBackoff):
			}
		}
		if !acquired {
			release()
			return nil, inventory.ErrSystemBusy
		}
		held = append(held, key)
	}
	return release, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.InventoryAdjustment, error) {
	if input.Delta == 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	reason := input.Reason
	if reason == "" {
		reason = model.ReasonManual
	}

	release, err := uc.acquire(ctx, lockKey(input.MerchantID, input.ProductID, input.WarehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	adj := &model.InventoryAdjustment{
		ID:            uuid.New().String(),
		MerchantID:    input.MerchantID,
		ProductID:     input.ProductID,
		WarehouseID:   input.WarehouseID,
		Delta:         input.Delta,
		Reason:        reason,
		ReferenceType: optional(input.ReferenceType),
		ReferenceID:   optional(input.ReferenceID),
		Notes:         input.Notes,
		CreatedBy:     optional(input.UserID),
		CreatedAt:     time.Now(),
	}

	if err := uc.repo.ApplyAdjustment(ctx, adj); err != nil {
		return nil, err
	}

	uc.logger.Info("stock adjusted",
		zap.String("product_id", adj.ProductID),
		zap.Int("delta", adj.Delta),
		zap.Int("new_stock", adj.NewStock),
		zap.String("reason", adj.Reason),
	)
	uc.invalidateCatalog(ctx, input.MerchantID)
	return adj, nil
}

func (uc *inventoryUseCase) TransferStock(ctx context.Context, input *dto.TransferStockInput) ([]model.InventoryAdjustment, error) {
	if input.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, inventory.ErrSameWarehouse
	}

	from, to := input.FromWarehouseID, input.ToWarehouseID
	release, err := uc.acquire(ctx,
		lockKey(input.MerchantID, input.ProductID, &from),
		lockKey(input.MerchantID, input.ProductID, &to),
	)
	if err != nil {
		return nil, err
	}
	defer release()

	now := time.Now()
	ref := uuid.New().String()
	refType := "transfer"
	leg := func(warehouseID *string, delta int, reason string) *model.InventoryAdjustment {
		return &model.InventoryAdjustment{
			ID:            uuid.New().String(),
			MerchantID:    input.MerchantID,
			ProductID:     input.ProductID,
			WarehouseID:   warehouseID,
			Delta:         delta,
			Reason:        reason,
			ReferenceType: &refType,
			ReferenceID:   &ref,
			Notes:         input.Notes,
			CreatedBy:     optional(input.UserID),
			CreatedAt:     now,
		}
	}
	out := leg(&from, -input.Quantity, model.ReasonTransferOut)
	in := leg(&to, input.Quantity, model.ReasonTransferIn)

	if err := uc.repo.Transfer(ctx, out, in); err != nil {
		return nil, err
	}
	return []model.InventoryAdjustment{*out, *in}, nil
}

func (uc *inventoryUseCase) ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	return uc.repo.ListAdjustments(ctx, filters)
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]dto.LowStockItem, int, error) {
	return uc.repo.ListLowStock(ctx, filters)
}

// invalidateCatalog drops cached product lists, whose stock figures and
// in_stock filter results are now stale.
func (uc *inventoryUseCase) invalidateCatalog(ctx context.Context, merchantID string) {
	if err := uc.cache.DeletePattern(ctx, product.ListCachePattern(merchantID)); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
}
