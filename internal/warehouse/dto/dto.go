package dto

import "time"

type WarehouseFilters struct {
	MerchantID string
	IsActive   *bool
	Page       int
	PageSize   int
}

type CreateWarehouseInput struct {
	MerchantID string
	Code       string
	Name       string
	Address    string
}

type UpdateWarehouseInput struct {
	ID         string
	MerchantID string
	Code       string
	Name       string
	Address    string
	IsActive   bool
}

// StockLine is one product held in a warehouse.
type StockLine struct {
	ProductID    string    `db:"product_id" json:"product_id"`
	SKU          string    `db:"sku" json:"sku"`
	Name         string    `db:"name" json:"name"`
	Quantity     int       `db:"quantity" json:"quantity"`
	ReorderPoint int       `db:"reorder_point" json:"reorder_point"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
