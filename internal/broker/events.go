package broker

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
)

// EventPublisher publishes domain events. Orders and catalog changes go to
// separate topics; publishing is best effort and callers log failures
// rather than failing the triggering operation.
type EventPublisher struct {
	orders  *Producer
	catalog *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(orders, catalog *Producer) *EventPublisher {
	return &EventPublisher{orders: orders, catalog: catalog}
}

// PublishOrderCreated publishes OrderCreated
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.orders.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.orders.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderDeleted publishes OrderDeleted
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return ep.orders.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishCatalogChanged publishes CatalogChanged
func (ep *EventPublisher) PublishCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error {
	key := fmt.Sprintf("%s-%d", event.Entity, event.EntityID)
	return ep.catalog.PublishEvent(ctx, key, event)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}
