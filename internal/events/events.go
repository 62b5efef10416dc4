package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated        = "OrderCreated"
	EventOrderConfirmed      = "OrderConfirmed"
	EventOrderProcessing     = "OrderProcessing"
	EventOrderShipped        = "OrderShipped"
	EventOrderOutForDelivery = "OrderOutForDelivery"
	EventOrderDelivered      = "OrderDelivered"
	EventOrderCancelled      = "OrderCancelled"
	EventOrderRefunded       = "OrderRefunded"
	EventOrderPaid           = "OrderPaid"
	EventPaymentFailed       = "PaymentFailed"
	EventStockChanged        = "StockChanged"
	EventCartConverted       = "CartConverted"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderStatusPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	TotalCents  int64  `json:"total_cents,omitempty"`
}

type StockChangedPayload struct {
	ProductID string `json:"product_id"`
	Operation string `json:"operation"` // reserve | release | deduct | restock
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Reserved  int    `json:"reserved"`
	Status    string `json:"status"`
}

type CartConvertedPayload struct {
	CartID  string `json:"cart_id"`
	OrderID string `json:"order_id"`
}
