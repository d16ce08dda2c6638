package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerRepo keeps catalog stock and the ledger in memory with the same
// all-or-nothing rule as the Postgres repository.
type ledgerRepo struct {
	mu     sync.Mutex
	stock  map[string]int
	ledger []model.InventoryAdjustment
}

func (r *ledgerRepo) ApplyAdjustment(_ context.Context, adj *model.InventoryAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.stock[adj.ProductID]
	if !ok {
		return inventory.ErrProductNotFound
	}
	if current+adj.Delta < 0 {
		return inventory.ErrInsufficientStock
	}
	r.stock[adj.ProductID] = current + adj.Delta
	adj.PreviousStock, adj.NewStock = current, current+adj.Delta
	r.ledger = append(r.ledger, *adj)
	return nil
}

func (r *ledgerRepo) Transfer(_ context.Context, out, in *model.InventoryAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger = append(r.ledger, *out, *in)
	return nil
}

func (r *ledgerRepo) ListAdjustments(context.Context, *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), r.ledger...), len(r.ledger), nil
}

func (r *ledgerRepo) ListLowStock(context.Context, *dto.LowStockFilters) ([]dto.LowStockItem, int, error) {
	return nil, 0, nil
}

func newUseCase(stock map[string]int) (inventory.UseCase, *ledgerRepo, *cache.Memory) {
	repo := &ledgerRepo{stock: stock}
	mem := cache.NewMemory()
	return NewInventoryUseCase(repo, mem, mem, logger.NewNop()), repo, mem
}

func TestAdjustStock_RejectsNegative(t *testing.T) {
	uc, repo, _ := newUseCase(map[string]int{"p1": 5})

	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{MerchantID: "m1", ProductID: "p1", Delta: -10})

	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 5, repo.stock["p1"])
	assert.Empty(t, repo.ledger)
}

func TestAdjustStock_RestockAppendsOneEntry(t *testing.T) {
	uc, repo, _ := newUseCase(map[string]int{"p1": 5})

	adj, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{MerchantID: "m1", ProductID: "p1", Delta: 10, UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 15, repo.stock["p1"])
	require.Len(t, repo.ledger, 1)
	assert.Equal(t, 5, adj.PreviousStock)
	assert.Equal(t, 15, adj.NewStock)
	assert.Equal(t, model.ReasonManual, adj.Reason)
	assert.Equal(t, "u1", *adj.CreatedBy)
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	uc, _, _ := newUseCase(map[string]int{"p1": 5})
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustStockInput{MerchantID: "m1", ProductID: "p1"})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestAdjustStock_LockHeldElsewhere(t *testing.T) {
	uc, repo, mem := newUseCase(map[string]int{"p1": 5})
	ok, err := mem.AcquireLock(context.Background(), "lock:inventory:m1:p1", "other-replica", 0)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = uc.AdjustStock(context.Background(), &dto.AdjustStockInput{MerchantID: "m1", ProductID: "p1", Delta: 1})
	assert.ErrorIs(t, err, inventory.ErrSystemBusy)
	assert.Empty(t, repo.ledger)
}

func TestAdjustStock_ReleasesLockAndInvalidatesCatalog(t *testing.T) {
	uc, _, mem := newUseCase(map[string]int{"p1": 5})
	ctx := context.Background()
	require.NoError(t, mem.SetJSON(ctx, "products:list:m1:abc", []int{1}, 0))

	_, err := uc.AdjustStock(ctx, &dto.AdjustStockInput{MerchantID: "m1", ProductID: "p1", Delta: 1})
	require.NoError(t, err)

	_, locked := mem.Raw("lock:inventory:m1:p1")
	assert.False(t, locked)
	_, cached := mem.Raw("products:list:m1:abc")
	assert.False(t, cached)
}

func TestAdjustStock_ConcurrentDecrementsNeverOversell(t *testing.T) {
	uc, repo, _ := newUseCase(map[string]int{"p1": 3})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.AdjustStock(context.Background(), &dto.AdjustStockInput{MerchantID: "m1", ProductID: "p1", Delta: -1})
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, repo.stock["p1"], 0)
	assert.Equal(t, 3-len(repo.ledger), repo.stock["p1"])
}

func TestTransferStock(t *testing.T) {
	uc, repo, _ := newUseCase(map[string]int{})

	_, err := uc.TransferStock(context.Background(), &dto.TransferStockInput{MerchantID: "m1", ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w1", Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrSameWarehouse)

	_, err = uc.TransferStock(context.Background(), &dto.TransferStockInput{MerchantID: "m1", ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2"})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	legs, err := uc.TransferStock(context.Background(), &dto.TransferStockInput{MerchantID: "m1", ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2", Quantity: 4})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, -4, legs[0].Delta)
	assert.Equal(t, model.ReasonTransferOut, legs[0].Reason)
	assert.Equal(t, 4, legs[1].Delta)
	assert.Equal(t, *legs[0].ReferenceID, *legs[1].ReferenceID)
	assert.Len(t, repo.ledger, 2)
}
