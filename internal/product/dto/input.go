package dto

type CreateProductInput struct {
	MerchantID   string
	CategoryID   string
	SKU          string
	Barcode      string
	Name         string
	Description  string
	BasePrice    float64
	CostPrice    float64
	Stock        int
	ReorderPoint int
	ImageURL     string
}

type UpdateProductInput struct {
	ID           string
	MerchantID   string
	CategoryID   string
	SKU          string
	Barcode      string
	Name         string
	Description  string
	BasePrice    float64
	CostPrice    float64
	ReorderPoint int
	Rating       float64
	ReviewCount  int
	ImageURL     string
	IsActive     bool
}
