package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	warehouses map[string]model.Warehouse
	held       map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{warehouses: map[string]model.Warehouse{}, held: map[string]int{}}
}

func (m *memRepo) Create(_ context.Context, w *model.Warehouse) error {
	m.warehouses[w.ID] = *w
	return nil
}

func (m *memRepo) FindByID(_ context.Context, merchantID, id string) (*model.Warehouse, error) {
	w, ok := m.warehouses[id]
	if !ok || w.MerchantID != merchantID {
		return nil, nil
	}
	return &w, nil
}

func (m *memRepo) FindAll(context.Context, *dto.WarehouseFilters) ([]model.Warehouse, int, error) {
	out := make([]model.Warehouse, 0, len(m.warehouses))
	for _, w := range m.warehouses {
		out = append(out, w)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, w *model.Warehouse) error {
	m.warehouses[w.ID] = *w
	return nil
}

func (m *memRepo) Delete(_ context.Context, _, id string) error {
	delete(m.warehouses, id)
	return nil
}

func (m *memRepo) IsCodeUnique(_ context.Context, merchantID, code, excludeID string) (bool, error) {
	for _, w := range m.warehouses {
		if w.MerchantID == merchantID && w.Code == code && w.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

func (m *memRepo) TotalQuantity(_ context.Context, id string) (int, error) {
	return m.held[id], nil
}

func (m *memRepo) ListStock(context.Context, string, string) ([]dto.StockLine, error) {
	return []dto.StockLine{}, nil
}

func (m *memRepo) SetReorderPoint(_ context.Context, merchantID, warehouseID, productID string, rp int) (*model.WarehouseStock, error) {
	return &model.WarehouseStock{MerchantID: merchantID, WarehouseID: warehouseID, ProductID: productID, ReorderPoint: rp}, nil
}

func TestCreateWarehouse_NormalizesAndRejectsDuplicateCode(t *testing.T) {
	uc := NewWarehouseUseCase(newMemRepo(), logger.NewNop())
	ctx := context.Background()

	w, err := uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{MerchantID: "m1", Code: " jkt-1 ", Name: "Jakarta"})
	require.NoError(t, err)
	assert.Equal(t, "JKT-1", w.Code)
	assert.True(t, w.IsActive)
	assert.Nil(t, w.Address)

	_, err = uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{MerchantID: "m1", Code: "JKT-1", Name: "Dup"})
	assert.ErrorIs(t, err, warehouse.ErrCodeTaken)

	_, err = uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{MerchantID: "m2", Code: "JKT-1", Name: "Other merchant"})
	assert.NoError(t, err)
}

func TestDeleteWarehouse_RefusesWhileStocked(t *testing.T) {
	repo := newMemRepo()
	uc := NewWarehouseUseCase(repo, logger.NewNop())
	ctx := context.Background()

	w, err := uc.CreateWarehouse(ctx, &dto.CreateWarehouseInput{MerchantID: "m1", Code: "SBY", Name: "Surabaya"})
	require.NoError(t, err)
	repo.held[w.ID] = 4

	assert.ErrorIs(t, uc.DeleteWarehouse(ctx, "m1", w.ID), warehouse.ErrWarehouseNotEmpty)

	repo.held[w.ID] = 0
	require.NoError(t, uc.DeleteWarehouse(ctx, "m1", w.ID))
	_, err = uc.GetWarehouse(ctx, "m1", w.ID)
	assert.ErrorIs(t, err, warehouse.ErrWarehouseNotFound)
}

func TestSetReorderPoint_UnknownWarehouse(t *testing.T) {
	uc := NewWarehouseUseCase(newMemRepo(), logger.NewNop())
	_, err := uc.SetReorderPoint(context.Background(), "m1", "ghost", "p1", 3)
	assert.ErrorIs(t, err, warehouse.ErrWarehouseNotFound)
}
