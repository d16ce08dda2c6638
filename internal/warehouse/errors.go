package warehouse

import "errors"

var (
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrCodeTaken         = errors.New("warehouse code already exists")
	ErrWarehouseNotEmpty = errors.New("warehouse still holds stock")
	ErrProductNotFound   = errors.New("product not found")
)
