package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
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

func TestDashboard(t *testing.T) {
	repo, mock := newMock(t)
	since := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"product_count", "low_stock_count", "out_of_stock_count", "inventory_value"}).
			AddRow(12, 3, 1, "1520.50"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("m1", since).
		WillReturnRows(sqlmock.NewRows([]string{"orders", "revenue"}).AddRow(4, "321.90"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items oi")).
		WithArgs("m1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "units_sold"}).
			AddRow("p1", "Alpha", 9).
			AddRow("p2", "Beta", 4))

	s, err := repo.Dashboard(context.Background(), "m1", since, 5)
	require.NoError(t, err)

	assert.Equal(t, 12, s.ProductCount)
	assert.Equal(t, 3, s.LowStockCount)
	assert.Equal(t, 1, s.OutOfStockCount)
	assert.Equal(t, 4, s.OrdersToday)
	assert.True(t, decimal.RequireFromString("321.90").Equal(s.RevenueToday))
	assert.True(t, decimal.RequireFromString("1520.50").Equal(s.InventoryValue))
	require.Len(t, s.TopProducts, 2)
	assert.Equal(t, 9, s.TopProducts[0].UnitsSold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchants(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT merchant_id FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"merchant_id"}).AddRow("m1").AddRow("m2"))

	ids, err := repo.Merchants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
}
