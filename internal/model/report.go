package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardSummary struct {
	MerchantID      string          `json:"merchant_id"`
	ProductCount    int             `json:"product_count"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	OrdersToday     int             `json:"orders_today"`
	RevenueToday    decimal.Decimal `json:"revenue_today"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
	TopProducts     []TopProduct    `json:"top_products"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

type TopProduct struct {
	ProductID string `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	UnitsSold int    `db:"units_sold" json:"units_sold"`
}
