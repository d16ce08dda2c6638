package model

import "time"

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

// OrderEvent is the message published on the orders topic.
type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
	// DeductOnConsume asks the inventory listener to move stock. Storefront
	// checkouts reserve stock synchronously and leave it false.
	DeductOnConsume bool `json:"deduct_on_consume"`
}

type OrderPayload struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"order_number"`
	MerchantID  string             `json:"merchant_id"`
	UserID      string             `json:"user_id"`
	WarehouseID string             `json:"warehouse_id,omitempty"`
	Status      string             `json:"status"`
	Total       string             `json:"total"`
	Items       []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
