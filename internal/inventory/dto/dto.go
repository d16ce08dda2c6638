package dto

import "time"

type AdjustmentFilters struct {
	MerchantID  string
	ProductID   string
	WarehouseID string
	Reason      string
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

type LowStockFilters struct {
	MerchantID  string
	WarehouseID string // empty lists catalog-level stock
	Page        int
	PageSize    int
}

// LowStockItem is a product, or a product within one warehouse, at or below
// its reorder point.
type LowStockItem struct {
	ProductID    string  `db:"product_id" json:"product_id"`
	SKU          string  `db:"sku" json:"sku"`
	Name         string  `db:"name" json:"name"`
	WarehouseID  *string `db:"warehouse_id" json:"warehouse_id,omitempty"`
	Quantity     int     `db:"quantity" json:"quantity"`
	ReorderPoint int     `db:"reorder_point" json:"reorder_point"`
}
