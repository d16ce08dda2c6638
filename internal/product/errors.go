package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSKUTaken        = errors.New("SKU already exists")
	ErrBarcodeTaken    = errors.New("barcode already exists")
)
