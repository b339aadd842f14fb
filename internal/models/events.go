package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderDeleted       = "ORDER_DELETED"
	EventTypeCatalogChanged     = "CATALOG_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is persisted
type OrderCreatedEvent struct {
	BaseEvent
	OrderID int64           `json:"order_id"`
	BuyerID int64           `json:"buyer_id"`
	Amount  string          `json:"amount"`
	Items   []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published on every status update
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// OrderDeletedEvent published on hard delete
type OrderDeletedEvent struct {
	BaseEvent
	OrderID int64 `json:"order_id"`
	BuyerID int64 `json:"buyer_id"`
}

// CatalogChangedEvent published after any mutating catalog operation so
// downstream caches can be invalidated
type CatalogChangedEvent struct {
	BaseEvent
	Entity   string `json:"entity"` // "product" or "category"
	EntityID int64  `json:"entity_id"`
	Action   string `json:"action"` // "created", "updated", "deleted"
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
