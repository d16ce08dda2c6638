package dto

type OrderFilters struct {
	MerchantID string
	UserID     string // empty lists every customer's orders
	Status     string
	Page       int
	PageSize   int
}

type ShippingAddress struct {
	Name       string `json:"name" validate:"required,max=120"`
	Line1      string `json:"line1" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=120"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
}

type CheckoutInput struct {
	MerchantID string
	UserID     string
	CartID     string
	Shipping   ShippingAddress
}

type UpdateStatusInput struct {
	MerchantID string
	OrderID    string
	Status     string
	Note       string
	ActorID    string
}

// Viewer is who is asking for an order. Staff may read any order of the
// merchant, customers only their own.
type Viewer struct {
	MerchantID string
	UserID     string
	Staff      bool
}
