package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/assets"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

// In-memory fakes for the store, asset-store, cache and publisher
// interfaces. They mirror the constraints the real Postgres store
// enforces (unique category names, unique (product, author) review
// pairs, newest-first listings).

type fakeAssets struct {
	mu      sync.Mutex
	nextRef int
	stored  map[string]bool
	deleted []string
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{stored: map[string]bool{}}
}

func (f *fakeAssets) Save(ctx context.Context, data []byte, meta assets.Meta) (string, error) {
	return f.put(), nil
}

// put registers a stored reference, standing in for the upload the HTTP
// layer performs before the service runs.
func (f *fakeAssets) put() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRef++
	ref := fmt.Sprintf("asset-%d.jpg", f.nextRef)
	f.stored[ref] = true
	return ref
}

func (f *fakeAssets) Delete(ctx context.Context, ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	delete(f.stored, ref)
	return true
}

func (f *fakeAssets) Exists(ctx context.Context, ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[ref]
}

func (f *fakeAssets) Rollback(ctx context.Context, refs []string) {
	for _, ref := range refs {
		f.Delete(ctx, ref)
	}
}

func (f *fakeAssets) deleteCount(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.deleted {
		if d == ref {
			n++
		}
	}
	return n
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

type fakePublisher struct {
	mu             sync.Mutex
	orderCreated   []*models.OrderCreatedEvent
	statusChanged  []*models.OrderStatusChangedEvent
	orderDeleted   []*models.OrderDeletedEvent
	catalogChanged []*models.CatalogChangedEvent
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCreated = append(f.orderCreated, e)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanged = append(f.statusChanged, e)
	return nil
}

func (f *fakePublisher) PublishOrderDeleted(ctx context.Context, e *models.OrderDeletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderDeleted = append(f.orderDeleted, e)
	return nil
}

func (f *fakePublisher) PublishCatalogChanged(ctx context.Context, e *models.CatalogChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogChanged = append(f.catalogChanged, e)
	return nil
}

type fakeCategoryStore struct {
	nextID     int64
	categories []models.Category
}

func (f *fakeCategoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return apperr.Conflict("category already exists")
		}
	}
	f.nextID++
	category.ID = f.nextID
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	f.categories = append(f.categories, *category)
	return nil
}

func (f *fakeCategoryStore) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	for i := range f.categories {
		if strings.EqualFold(f.categories[i].Name, name) {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category", id)
}

func (f *fakeCategoryStore) UpdateCategory(ctx context.Context, id int64, description, status string) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Description = description
			f.categories[i].Status = status
			f.categories[i].UpdatedAt = time.Now()
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category", id)
}

func (f *fakeCategoryStore) DeleteCategory(ctx context.Context, id int64) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			c := f.categories[i]
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category", id)
}

func (f *fakeCategoryStore) GetCategories(ctx context.Context) ([]models.Category, error) {
	out := append([]models.Category(nil), f.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeProductStore struct {
	nextID       int64
	nextReviewID int64
	products     []models.Product
	reviews      []models.Review
	categoryIDs  map[int64]bool
}

func newFakeProductStore(categoryIDs ...int64) *fakeProductStore {
	f := &fakeProductStore{categoryIDs: map[int64]bool{}}
	for _, id := range categoryIDs {
		f.categoryIDs[id] = true
	}
	return f
}

func (f *fakeProductStore) CreateProduct(ctx context.Context, product *models.Product) error {
	f.nextID++
	product.ID = f.nextID
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeProductStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, apperr.NotFound("product", id)
}

func (f *fakeProductStore) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == product.ID {
			product.CreatedAt = f.products[i].CreatedAt
			product.UpdatedAt = time.Now()
			f.products[i] = *product
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, apperr.NotFound("product", product.ID)
}

func (f *fakeProductStore) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			f.products = append(f.products[:i], f.products[i+1:]...)
			return &p, nil
		}
	}
	return nil, apperr.NotFound("product", id)
}

func (f *fakeProductStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	out := append([]models.Product(nil), f.products...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeProductStore) GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeProductStore) GetProductsBelowPrice(ctx context.Context, ceiling decimal.Decimal) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.Price.LessThan(ceiling) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	return out, nil
}

func (f *fakeProductStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Product
	for _, p := range f.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) InsertReview(ctx context.Context, review *models.Review) error {
	for _, r := range f.reviews {
		if r.ProductID == review.ProductID && r.AuthorID == review.AuthorID {
			return apperr.Conflict("author has already reviewed this product")
		}
	}
	f.nextReviewID++
	review.ID = f.nextReviewID
	review.CreatedAt = time.Now()
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeProductStore) GetReviewsByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProductStore) DeleteReview(ctx context.Context, productID, reviewID int64) error {
	for i := range f.reviews {
		if f.reviews[i].ID == reviewID && f.reviews[i].ProductID == productID {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeProductStore) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return f.categoryIDs[id], nil
}

type fakeOrderStore struct {
	nextID     int64
	nextItemID int64
	orders     []models.Order
	items      map[int64][]models.OrderItem
	buyers     map[int64]*models.Buyer
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		items:  map[int64][]models.OrderItem{},
		buyers: map[int64]*models.Buyer{},
	}
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		f.nextItemID++
		order.Items[i].ID = f.nextItemID
		order.Items[i].OrderID = order.ID
	}
	f.items[order.ID] = append([]models.OrderItem(nil), order.Items...)
	stored := *order
	stored.Items = nil
	f.orders = append(f.orders, stored)
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, apperr.NotFound("order", id)
}

func (f *fakeOrderStore) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrderStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	out := append([]models.Order(nil), f.orders...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOrderStore) GetOrdersByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Status = status
			f.orders[i].UpdatedAt = time.Now()
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, apperr.NotFound("order", orderID)
}

func (f *fakeOrderStore) DeleteOrder(ctx context.Context, id int64) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			o := f.orders[i]
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			delete(f.items, id)
			return &o, nil
		}
	}
	return nil, apperr.NotFound("order", id)
}

func (f *fakeOrderStore) GetBuyerByID(ctx context.Context, id int64) (*models.Buyer, error) {
	return f.buyers[id], nil
}
