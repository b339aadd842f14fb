package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateOrderRequest represents a checkout request
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	BuyerID       int64              `json:"buyer_id"`
	Amount        string             `json:"amount"`
	TransactionID string             `json:"transaction_id"`
	Address       string             `json:"address"`
	Phone         string             `json:"phone"`
}

// OrderItemRequest represents one line item in a checkout request
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderService owns order records and their status state machine. It
// references products and buyers for hydration only; deleting an order
// never adjusts stock on the referenced products.
type OrderService struct {
	store     OrderStore
	publisher Publisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, publisher Publisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Create validates the checkout request and persists the order with
// status "Not processed", returning it hydrated with product and buyer
// projections.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	fe := apperr.FieldErrors{}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		fe.Add("amount", "amount must be a positive number")
	}
	if len(req.Items) == 0 {
		fe.Add("items", "order must contain at least one product")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			fe.Add("items", "every line item needs a positive quantity")
		}
		if item.ProductID <= 0 {
			fe.Add("items", "every line item needs a product")
		}
	}
	if req.BuyerID <= 0 {
		fe.Add("buyer", "buyer is required")
	}
	if strings.TrimSpace(req.TransactionID) == "" {
		fe.Add("transaction_id", "transaction id is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		fe.Add("address", "address is required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		fe.Add("phone", "phone is required")
	}
	if err := fe.Err(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	order := &models.Order{
		BuyerID:       req.BuyerID,
		Amount:        amount.Round(2),
		TransactionID: strings.TrimSpace(req.TransactionID),
		Address:       strings.TrimSpace(req.Address),
		Phone:         strings.TrimSpace(req.Phone),
		Status:        models.OrderStatusNotProcessed,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("buyer_id", order.BuyerID),
		zap.String("amount", order.Amount.StringFixed(2)))

	if err := s.hydrate(ctx, order); err != nil {
		return nil, err
	}

	items := make([]models.OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	event := &models.OrderCreatedEvent{
		BaseEvent: baseEvent(models.EventTypeOrderCreated),
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		Amount:    order.Amount.StringFixed(2),
		Items:     items,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// SetStatus moves an order to a new status label. The label set is
// case-insensitive and closed; the transition table is consulted even
// though it currently allows every move between known labels.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, label string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SetStatus")
	defer span.End()

	status, ok := models.NormalizeOrderStatus(label)
	if !ok {
		return nil, apperr.Validation("status", "unknown order status")
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, status) {
		return nil, apperr.Validation("status", "transition not allowed")
	}

	updated, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent:  baseEvent(models.EventTypeOrderStatusChanged),
		OrderID:    orderID,
		FromStatus: order.Status,
		ToStatus:   status,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	if err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete hard-deletes an order. Stock on the referenced products is not
// restored.
func (s *OrderService) Delete(ctx context.Context, id int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete")
	defer span.End()

	order, err := s.store.DeleteOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order deleted", zap.Int64("order_id", id))

	event := &models.OrderDeletedEvent{
		BaseEvent: baseEvent(models.EventTypeOrderDeleted),
		OrderID:   id,
		BuyerID:   order.BuyerID,
	}
	if err := s.publisher.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}

	return order, nil
}

// List returns all orders, newest first, hydrated
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, orders)
}

// ListByBuyer returns a buyer's orders, newest first, hydrated
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListByBuyer")
	defer span.End()

	orders, err := s.store.GetOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(ctx, orders)
}

// Get returns a single order, hydrated
func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Get")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// hydrate attaches line items (with product projections) and the buyer
// projection. Dangling product or buyer references are tolerated: the
// projections simply stay empty.
func (s *OrderService) hydrate(ctx context.Context, order *models.Order) error {
	items, err := s.store.GetOrderItems(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Items = items

	buyer, err := s.store.GetBuyerByID(ctx, order.BuyerID)
	if err != nil {
		return err
	}
	order.Buyer = buyer
	return nil
}

func (s *OrderService) hydrateAll(ctx context.Context, orders []models.Order) ([]models.Order, error) {
	for i := range orders {
		if err := s.hydrate(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
