package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestApplyAdjustment_Restock(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WithArgs(10, "p1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(15))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inventory_adjustments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	adj := &model.InventoryAdjustment{MerchantID: "m1", ProductID: "p1", Delta: 10, Reason: model.ReasonRestock}
	require.NoError(t, repo.ApplyAdjustment(context.Background(), adj))

	assert.Equal(t, 5, adj.PreviousStock)
	assert.Equal(t, 15, adj.NewStock)
	assert.NotEmpty(t, adj.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAdjustment_WouldGoNegative(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WithArgs(-10, "p1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM products")).
		WithArgs("p1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	adj := &model.InventoryAdjustment{MerchantID: "m1", ProductID: "p1", Delta: -10, Reason: model.ReasonManual}
	err := repo.ApplyAdjustment(context.Background(), adj)

	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAdjustment_UnknownProduct(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := repo.ApplyAdjustment(context.Background(), &model.InventoryAdjustment{MerchantID: "m1", ProductID: "ghost", Delta: 1})
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransfer(t *testing.T) {
	repo, mock := newMock(t)
	from, to := "w1", "w2"

	mock.ExpectBegin()
	// outbound leg
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM warehouses")).
		WithArgs(from, "m1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM warehouse_stock")).
		WithArgs(from, "p1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(8))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE warehouse_stock SET quantity = $1")).
		WithArgs(5, from, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inventory_adjustments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// inbound leg, first receipt in this warehouse
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM warehouses")).
		WithArgs(to, "m1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM warehouse_stock")).
		WithArgs(to, "p1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO warehouse_stock")).
		WithArgs(sqlmock.AnyArg(), "m1", to, "p1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inventory_adjustments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out := &model.InventoryAdjustment{MerchantID: "m1", ProductID: "p1", WarehouseID: &from, Delta: -3, Reason: model.ReasonTransferOut}
	in := &model.InventoryAdjustment{MerchantID: "m1", ProductID: "p1", WarehouseID: &to, Delta: 3, Reason: model.ReasonTransferIn}
	require.NoError(t, repo.Transfer(context.Background(), out, in))

	assert.Equal(t, 8, out.PreviousStock)
	assert.Equal(t, 5, out.NewStock)
	assert.Equal(t, 0, in.PreviousStock)
	assert.Equal(t, 3, in.NewStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransfer_SourceShort(t *testing.T) {
	repo, mock := newMock(t)
	from, to := "w1", "w2"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM warehouses")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM warehouse_stock")).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(1))
	mock.ExpectRollback()

	out := &model.InventoryAdjustment{MerchantID: "m1", ProductID: "p1", WarehouseID: &from, Delta: -3}
	in := &model.InventoryAdjustment{MerchantID: "m1", ProductID: "p1", WarehouseID: &to, Delta: 3}
	assert.ErrorIs(t, repo.Transfer(context.Background(), out, in), inventory.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAdjustments_Filters(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM inventory_adjustments WHERE merchant_id = $1 AND product_id = $2 AND reason = $3")).
		WithArgs("m1", "p1", model.ReasonSale).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id LIMIT 20 OFFSET 0")).
		WithArgs("m1", "p1", model.ReasonSale).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := repo.ListAdjustments(context.Background(), &dto.AdjustmentFilters{
		MerchantID: "m1", ProductID: "p1", Reason: model.ReasonSale, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
