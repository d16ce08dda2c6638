package dto

type AdjustStockInput struct {
	MerchantID    string
	ProductID     string
	WarehouseID   *string
	Delta         int
	Reason        string
	ReferenceType string
	ReferenceID   string
	Notes         string
	UserID        string
}

type TransferStockInput struct {
	MerchantID      string
	FromWarehouseID string
	ToWarehouseID   string
	ProductID       string
	Quantity        int
	Notes           string
	UserID          string
}
