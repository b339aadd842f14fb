package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

// itemColumns hydrates line items with product projections. The join is
// LEFT because product references are soft; items referencing a deleted
// product keep zero-valued projections.
const itemColumns = `
	SELECT i.*, COALESCE(p.name, '') AS product_name, COALESCE(p.price, 0) AS product_price
	FROM order_items i
	LEFT JOIN products p ON p.id = i.product_id`

// CreateOrder persists an order and its line items in one transaction
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (buyer_id, amount, transaction_id, address, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	row := tx.QueryRowxContext(ctx, query,
		order.BuyerID, order.Amount, order.TransactionID,
		order.Address, order.Phone, order.Status)
	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.GetContext(ctx, &item.ID,
			"INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id",
			item.OrderID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves an order's line items with product hydration
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		itemColumns+" WHERE i.order_id = $1 ORDER BY i.id", orderID)
	return items, err
}

// GetOrders retrieves all orders, newest first
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY id DESC")
	return orders, err
}

// GetOrdersByBuyer retrieves a buyer's orders, newest first
func (s *Store) GetOrdersByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE buyer_id = $1 ORDER BY id DESC", buyerID)
	return orders, err
}

// UpdateOrderStatus updates the status label only
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING *`

	var order models.Order
	err := s.db.GetContext(ctx, &order, query, status, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &order, nil
}

// DeleteOrder hard-deletes an order and its line items. Stock on the
// referenced products is not adjusted.
func (s *Store) DeleteOrder(ctx context.Context, id int64) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete order items: %w", err)
	}

	var order models.Order
	err = tx.GetContext(ctx, &order,
		"DELETE FROM orders WHERE id = $1 RETURNING *", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetBuyerByID retrieves a buyer projection. Returns nil without error
// when the buyer is unknown; the buyer reference is soft.
func (s *Store) GetBuyerByID(ctx context.Context, id int64) (*models.Buyer, error) {
	var buyer models.Buyer
	err := s.db.GetContext(ctx, &buyer,
		"SELECT id, name, email FROM buyers WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}
