package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/assets"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxNameLen        = 255
	maxDescriptionLen = 3000
)

// ProductFields carries the writable product fields as received from the
// caller. Numeric fields stay raw strings so every parse failure lands in
// the same batched validation error as the range checks.
type ProductFields struct {
	Name        string
	Description string
	Price       string
	Quantity    string
	CategoryID  int64
	Offer       string
	Status      string
}

// ProductService owns product records, their two bound images, pricing,
// stock and the embedded review ledger.
type ProductService struct {
	store     ProductStore
	assets    assets.Store
	cache     Cache
	publisher Publisher
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store ProductStore, assetStore assets.Store, cache Cache, publisher Publisher, cacheTTL time.Duration) *ProductService {
	return &ProductService{
		store:     store,
		assets:    assetStore,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		logger:    util.GetLogger(),
	}
}

// validateFields runs every field check and accumulates the failures into
// one error instead of stopping at the first.
func (s *ProductService) validateFields(ctx context.Context, f ProductFields) (*models.Product, apperr.FieldErrors, error) {
	fe := apperr.FieldErrors{}
	product := &models.Product{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		CategoryID:  f.CategoryID,
		Status:      strings.TrimSpace(f.Status),
	}

	if product.Name == "" {
		fe.Add("name", "name is required")
	} else if len(product.Name) > maxNameLen {
		fe.Add("name", "name must be at most 255 characters")
	}

	if product.Description == "" {
		fe.Add("description", "description is required")
	} else if len(product.Description) > maxDescriptionLen {
		fe.Add("description", "description must be at most 3000 characters")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil || !price.IsPositive() {
		fe.Add("price", "price must be a positive number")
	} else {
		product.Price = price.Round(2)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if err != nil || quantity < 0 {
		fe.Add("quantity", "quantity must be a non-negative number")
	} else {
		product.Quantity = quantity
	}

	offerRaw := strings.TrimSpace(f.Offer)
	if offerRaw == "" {
		offerRaw = "0"
	}
	offer, err := strconv.Atoi(offerRaw)
	if err != nil || offer < 0 || offer > 100 {
		fe.Add("offer", "offer must be between 0 and 100")
	} else {
		product.OfferPct = offer
	}

	if product.Status == "" {
		fe.Add("status", "status is required")
	}

	if f.CategoryID <= 0 {
		fe.Add("category", "category is required")
	} else {
		exists, err := s.store.CategoryExists(ctx, f.CategoryID)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			fe.Add("category", "category does not exist")
		}
	}

	return product, fe, nil
}

// Create validates every field, requires exactly two images and persists
// the product with its price rounded to two decimals. On any failure both
// uploaded images are rolled back before returning.
func (s *ProductService) Create(ctx context.Context, fields ProductFields, imageRefs []string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	product, fe, err := s.validateFields(ctx, fields)
	if err != nil {
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}
	if len(imageRefs) != 2 {
		fe.Add("images", "exactly 2 images are required")
	}
	if err := fe.Err(); err != nil {
		util.ProductValidationFailuresTotal.Inc()
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}

	product.ImageRefs = pq.StringArray(imageRefs)
	if err := s.store.CreateProduct(ctx, product); err != nil {
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))

	s.invalidateAndPublish(ctx, product.ID, "created")
	return product, nil
}

// Edit replaces every mutable field. imageRefs must be empty (keep the
// existing pair) or exactly two (full replace); one is invalid. When
// replacing, the record update commits first and only then are the
// previously-referenced images deleted, so a failed update never loses the
// last good image set.
func (s *ProductService) Edit(ctx context.Context, id int64, fields ProductFields, imageRefs, oldImageRefs []string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Edit")
	defer span.End()

	if len(imageRefs) == 1 {
		util.ProductValidationFailuresTotal.Inc()
		s.assets.Rollback(ctx, imageRefs)
		return nil, apperr.Validation("images", "provide exactly 2 images, or none to keep the existing ones")
	}

	product, fe, err := s.validateFields(ctx, fields)
	if err != nil {
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}
	if err := fe.Err(); err != nil {
		util.ProductValidationFailuresTotal.Inc()
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}

	existing, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}

	product.ID = id
	replacing := len(imageRefs) == 2
	if replacing {
		product.ImageRefs = pq.StringArray(imageRefs)
	} else {
		product.ImageRefs = existing.ImageRefs
	}

	updated, err := s.store.UpdateProduct(ctx, product)
	if err != nil {
		s.assets.Rollback(ctx, imageRefs)
		return nil, err
	}

	if replacing {
		old := oldImageRefs
		if len(old) == 0 {
			old = existing.ImageRefs
		}
		for _, ref := range old {
			if !s.assets.Delete(ctx, ref) {
				s.logger.Warn("Replaced product image was not deleted",
					zap.Int64("product_id", id),
					zap.String("ref", ref))
			}
		}
	}

	s.invalidateAndPublish(ctx, id, "updated")
	return updated, nil
}

// Delete removes the record, then issues exactly one deletion per
// associated image reference.
func (s *ProductService) Delete(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	product, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, ref := range product.ImageRefs {
		if !s.assets.Delete(ctx, ref) {
			s.logger.Warn("Deleted product left an orphaned image",
				zap.Int64("product_id", id),
				zap.String("ref", ref))
		}
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	s.invalidateAndPublish(ctx, id, "deleted")
	return product, nil
}

// List returns all products, newest-created first, category-populated
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.List")
	defer span.End()

	var cached []models.Product
	if hit, err := s.cache.GetJSON(ctx, redisclient.KeyProducts, &cached); err != nil {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, redisclient.KeyProducts, products, s.cacheTTL); err != nil {
		s.logger.Warn("Product cache write failed", zap.Error(err))
	}
	return products, nil
}

// Get returns a single product with its category and review ledger
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Get")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.GetReviewsByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Reviews = reviews
	return product, nil
}

// ListByCategory returns the products referencing a category
func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListByCategory")
	defer span.End()

	key := redisclient.CategoryKey(categoryID)
	var cached []models.Product
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn("Product cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	products, err := s.store.GetProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, products, s.cacheTTL); err != nil {
		s.logger.Warn("Product cache write failed", zap.Error(err))
	}
	return products, nil
}

// ListByMaxPrice returns products priced strictly below the ceiling,
// most expensive first
func (s *ProductService) ListByMaxPrice(ctx context.Context, ceiling string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListByMaxPrice")
	defer span.End()

	max, err := decimal.NewFromString(strings.TrimSpace(ceiling))
	if err != nil || !max.IsPositive() {
		return nil, apperr.Validation("price", "price must be a positive number")
	}

	return s.store.GetProductsBelowPrice(ctx, max)
}

// ListByIDs hydrates a cart or wishlist; unknown ids are silently absent
func (s *ProductService) ListByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListByIDs")
	defer span.End()

	return s.store.GetProductsByIDs(ctx, ids)
}

// AddReview appends a review to the product's ledger. The uniqueness of
// the (product, author) pair is enforced atomically by the store.
func (s *ProductService) AddReview(ctx context.Context, productID, authorID int64, rating int, body string) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.AddReview")
	defer span.End()

	fe := apperr.FieldErrors{}
	if rating < 1 || rating > 5 {
		fe.Add("rating", "rating must be between 1 and 5")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		fe.Add("review", "review text is required")
	}
	if authorID <= 0 {
		fe.Add("author", "author is required")
	}
	if err := fe.Err(); err != nil {
		util.ReviewsRejectedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		util.ReviewsRejectedTotal.WithLabelValues("product_not_found").Inc()
		return nil, err
	}

	review := &models.Review{
		ProductID: productID,
		AuthorID:  authorID,
		Rating:    rating,
		Body:      body,
	}
	if err := s.store.InsertReview(ctx, review); err != nil {
		var ce *apperr.ConflictError
		if errors.As(err, &ce) {
			util.ReviewsRejectedTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	util.ReviewsAddedTotal.Inc()
	s.logger.Info("Review added",
		zap.Int64("product_id", productID),
		zap.Int64("author_id", authorID),
		zap.Int("rating", rating))

	s.invalidateAndPublish(ctx, productID, "updated")
	return review, nil
}

// DeleteReview removes a review by id. No ownership check happens at this
// layer; whether only the author or an admin may delete is the caller's
// responsibility.
func (s *ProductService) DeleteReview(ctx context.Context, productID, reviewID int64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteReview")
	defer span.End()

	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return err
	}

	if err := s.store.DeleteReview(ctx, productID, reviewID); err != nil {
		return err
	}

	s.invalidateAndPublish(ctx, productID, "updated")
	return nil
}

func (s *ProductService) invalidateAndPublish(ctx context.Context, id int64, action string) {
	if err := s.cache.Invalidate(ctx, redisclient.KeyProducts); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}

	event := &models.CatalogChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogChanged,
			Timestamp: time.Now(),
		},
		Entity:   "product",
		EntityID: id,
		Action:   action,
	}
	if err := s.publisher.PublishCatalogChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish CatalogChanged event", zap.Error(err))
	}
}
