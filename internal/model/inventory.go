package model

import "time"

// Adjustment reasons recorded on the ledger.
const (
	ReasonManual         = "manual_adjustment"
	ReasonRestock        = "restock"
	ReasonSale           = "sale"
	ReasonReturn         = "return"
	ReasonDamage         = "damage"
	ReasonOrderCancelled = "order_cancelled"
	ReasonTransferIn     = "transfer_in"
	ReasonTransferOut    = "transfer_out"
)

// InventoryAdjustment is one append-only ledger entry.
type InventoryAdjustment struct {
	ID            string    `db:"id" json:"id"`
	MerchantID    string    `db:"merchant_id" json:"merchant_id"`
	ProductID     string    `db:"product_id" json:"product_id"`
	WarehouseID   *string   `db:"warehouse_id" json:"warehouse_id"`
	Delta         int       `db:"delta" json:"delta"`
	PreviousStock int       `db:"previous_stock" json:"previous_stock"`
	NewStock      int       `db:"new_stock" json:"new_stock"`
	Reason        string    `db:"reason" json:"reason"`
	ReferenceType *string   `db:"reference_type" json:"reference_type"`
	ReferenceID   *string   `db:"reference_id" json:"reference_id"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedBy     *string   `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Warehouse struct {
	BaseModel
	MerchantID string  `db:"merchant_id" json:"merchant_id"`
	Code       string  `db:"code" json:"code"`
	Name       string  `db:"name" json:"name"`
	Address    *string `db:"address" json:"address"`
	IsActive   bool    `db:"is_active" json:"is_active"`
}

// WarehouseStock is the quantity of one product held in one warehouse.
type WarehouseStock struct {
	ID           string    `db:"id" json:"id"`
	MerchantID   string    `db:"merchant_id" json:"merchant_id"`
	WarehouseID  string    `db:"warehouse_id" json:"warehouse_id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	Quantity     int       `db:"quantity" json:"quantity"`
	ReorderPoint int       `db:"reorder_point" json:"reorder_point"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
