package model

type Product struct {
	BaseModel
	MerchantID   string    `db:"merchant_id" json:"merchant_id"`
	CategoryID   *string   `db:"category_id" json:"category_id"` // Nullable
	SKU          string    `db:"sku" json:"sku"`
	Barcode      *string   `db:"barcode" json:"barcode"` // Nullable
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description"`
	BasePrice    float64   `db:"base_price" json:"base_price"`
	CostPrice    *float64  `db:"cost_price" json:"cost_price"`
	Stock        int       `db:"stock" json:"stock"`
	ReorderPoint int       `db:"reorder_point" json:"reorder_point"`
	Rating       float64   `db:"rating" json:"rating"`
	ReviewCount  int       `db:"review_count" json:"review_count"`
	ImageURL     *string   `db:"image_url" json:"image_url"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Category     *Category `db:"-" json:"category,omitempty"` // Joined data
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

// LowStock reports whether stock has fallen to the reorder point. An
// out-of-stock product is always low.
func (p *Product) LowStock() bool {
	return p.Stock <= p.ReorderPoint
}
