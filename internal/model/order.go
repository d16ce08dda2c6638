package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	BaseModel
	MerchantID         string             `db:"merchant_id" json:"merchant_id"`
	UserID             string             `db:"user_id" json:"user_id"`
	OrderNumber        string             `db:"order_number" json:"order_number"`
	Status             string             `db:"status" json:"status"`
	Subtotal           decimal.Decimal    `db:"subtotal" json:"subtotal"`
	Discount           decimal.Decimal    `db:"discount" json:"discount"`
	Shipping           decimal.Decimal    `db:"shipping" json:"shipping"`
	Tax                decimal.Decimal    `db:"tax" json:"tax"`
	Total              decimal.Decimal    `db:"total" json:"total"`
	PromoCode          *string            `db:"promo_code" json:"promo_code"`
	ShippingName       string             `db:"shipping_name" json:"shipping_name"`
	ShippingLine1      string             `db:"shipping_line1" json:"shipping_line1"`
	ShippingCity       string             `db:"shipping_city" json:"shipping_city"`
	ShippingPostalCode string             `db:"shipping_postal_code" json:"shipping_postal_code"`
	ShippingCountry    string             `db:"shipping_country" json:"shipping_country"`
	Items              []OrderItem        `db:"-" json:"items,omitempty"`
	History            []OrderStatusEvent `db:"-" json:"history,omitempty"`
}

type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	SKU       string          `db:"sku" json:"sku"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity  int             `db:"quantity" json:"quantity"`
	LineTotal decimal.Decimal `db:"line_total" json:"line_total"`
}

type OrderStatusEvent struct {
	ID        string    `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	Note      string    `db:"note" json:"note"`
	CreatedBy *string   `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
