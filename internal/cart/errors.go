package cart

import "errors"

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrItemNotFound      = errors.New("item not in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNoCartIdentity    = errors.New("cart session required")
)
