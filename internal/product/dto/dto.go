package dto

type ProductFilters struct {
	MerchantID  string   `json:"merchant_id"`
	CategoryID  string   `json:"category_id,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	InStock     *bool    `json:"in_stock,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	SearchQuery string   `json:"search,omitempty"` // For name, sku, barcode search
	SortBy      string   `json:"sort_by,omitempty"` // name, price, rating, stock, created_at
	SortOrder   string   `json:"sort_order,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}
