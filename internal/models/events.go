package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced   = "ORDER_PLACED"
	EventTypeStockAdjusted = "STOCK_ADJUSTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLineData represents a purchased line in an event payload
type OrderLineData struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderPlacedEvent is published when a checkout completes
type OrderPlacedEvent struct {
	BaseEvent
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Lines          []OrderLineData `json:"lines"`
	ShippingMethod string          `json:"shipping_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Shipping       decimal.Decimal `json:"shipping"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// StockAdjustedEvent is published after the worker applies a stock decrement
type StockAdjustedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
