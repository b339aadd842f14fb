package service

import (
	"context"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

// CategoryStore is the persistence surface the category service needs.
// *store.Store satisfies it.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, description, status string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) (*models.Category, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
}

// ProductStore is the persistence surface the product service needs.
// *store.Store satisfies it.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	GetProductsBelowPrice(ctx context.Context, ceiling decimal.Decimal) ([]models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	InsertReview(ctx context.Context, review *models.Review) error
	GetReviewsByProduct(ctx context.Context, productID int64) ([]models.Review, error)
	DeleteReview(ctx context.Context, productID, reviewID int64) error
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// OrderStore is the persistence surface the order service needs.
// *store.Store satisfies it.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) (*models.Order, error)
	GetBuyerByID(ctx context.Context, id int64) (*models.Buyer, error)
}

// Cache is the listing cache. *redisclient.Client satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Publisher emits domain events. *broker.EventPublisher satisfies it.
// Publish failures are logged by services, never surfaced.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
	PublishCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error
}
