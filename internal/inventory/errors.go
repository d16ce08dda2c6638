package inventory

import "errors"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrSameWarehouse     = errors.New("source and destination warehouse are the same")
	ErrInvalidQuantity   = errors.New("quantity must be non-zero")
	ErrSystemBusy        = errors.New("system busy, please try again later")
)
