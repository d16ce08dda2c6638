package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

type stockStats struct {
	ProductCount    int             `db:"product_count"`
	LowStockCount   int             `db:"low_stock_count"`
	OutOfStockCount int             `db:"out_of_stock_count"`
	InventoryValue  decimal.Decimal `db:"inventory_value"`
}

type salesStats struct {
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

func (r *PGRepository) Dashboard(ctx context.Context, merchantID string, since time.Time, topN int) (*model.DashboardSummary, error) {
	var stock stockStats
	err := r.DB.GetContext(ctx, &stock, `
        SELECT
            COUNT(*) FILTER (WHERE is_active) AS product_count,
            COUNT(*) FILTER (WHERE is_active AND stock <= reorder_point) AS low_stock_count,
            COUNT(*) FILTER (WHERE is_active AND stock <= 0) AS out_of_stock_count,
            COALESCE(SUM(stock * COALESCE(cost_price, 0)) FILTER (WHERE is_active), 0) AS inventory_value
        FROM products
        WHERE merchant_id = $1
    `, merchantID)
	if err != nil {
		return nil, fmt.Errorf("stock stats: %w", err)
	}

	var sales salesStats
	err = r.DB.GetContext(ctx, &sales, `
        SELECT COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue
        FROM orders
        WHERE merchant_id = $1 AND created_at >= $2 AND status <> 'cancelled'
    `, merchantID, since)
	if err != nil {
		return nil, fmt.Errorf("sales stats: %w", err)
	}

	top := []model.TopProduct{}
	err = r.DB.SelectContext(ctx, &top, `
        SELECT oi.product_id, oi.name, SUM(oi.quantity) AS units_sold
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        WHERE o.merchant_id = $1 AND o.status <> 'cancelled'
        GROUP BY oi.product_id, oi.name
        ORDER BY units_sold DESC, oi.name
        LIMIT $2
    `, merchantID, topN)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return &model.DashboardSummary{
		MerchantID:      merchantID,
		ProductCount:    stock.ProductCount,
		LowStockCount:   stock.LowStockCount,
		OutOfStockCount: stock.OutOfStockCount,
		OrdersToday:     sales.Orders,
		RevenueToday:    sales.Revenue,
		InventoryValue:  stock.InventoryValue,
		TopProducts:     top,
	}, nil
}

func (r *PGRepository) Merchants(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.DB.SelectContext(ctx, &ids, `SELECT DISTINCT merchant_id FROM products WHERE is_active ORDER BY merchant_id`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
