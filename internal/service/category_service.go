package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"storefront-service/internal/apperr"
	"storefront-service/internal/assets"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService owns category records and their single bound image.
type CategoryService struct {
	store     CategoryStore
	assets    assets.Store
	cache     Cache
	publisher Publisher
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(store CategoryStore, assetStore assets.Store, cache Cache, publisher Publisher, cacheTTL time.Duration) *CategoryService {
	return &CategoryService{
		store:     store,
		assets:    assetStore,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		logger:    util.GetLogger(),
	}
}

// Create normalizes the name, checks for a case-insensitive duplicate and
// persists the category. On any rejection or failure the already-uploaded
// image is rolled back: uploads never outlive a rejected creation.
func (s *CategoryService) Create(ctx context.Context, name, description, status, imageRef string) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Create")
	defer span.End()

	name = titleCase(strings.TrimSpace(name))
	description = strings.TrimSpace(description)

	fe := apperr.FieldErrors{}
	if name == "" {
		fe.Add("name", "name is required")
	}
	if description == "" {
		fe.Add("description", "description is required")
	}
	if strings.TrimSpace(status) == "" {
		fe.Add("status", "status is required")
	}
	if imageRef == "" {
		fe.Add("image", "category image is required")
	}
	if err := fe.Err(); err != nil {
		s.assets.Rollback(ctx, []string{imageRef})
		return nil, err
	}

	existing, err := s.store.GetCategoryByName(ctx, name)
	if err != nil {
		s.assets.Rollback(ctx, []string{imageRef})
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		util.CategoryConflictsTotal.Inc()
		s.assets.Rollback(ctx, []string{imageRef})
		return nil, apperr.Conflict("category already exists")
	}

	category := &models.Category{
		Name:        name,
		Description: description,
		Status:      status,
		ImageRef:    imageRef,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		s.assets.Rollback(ctx, []string{imageRef})
		return nil, err
	}

	util.CategoriesCreatedTotal.Inc()
	s.logger.Info("Category created",
		zap.Int64("category_id", category.ID),
		zap.String("name", category.Name))

	s.invalidateAndPublish(ctx, category.ID, "created")
	return category, nil
}

// Update changes the mutable fields only; the name is immutable after
// creation.
func (s *CategoryService) Update(ctx context.Context, id int64, description, status string) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Update")
	defer span.End()

	fe := apperr.FieldErrors{}
	description = strings.TrimSpace(description)
	if description == "" {
		fe.Add("description", "description is required")
	}
	if strings.TrimSpace(status) == "" {
		fe.Add("status", "status is required")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	category, err := s.store.UpdateCategory(ctx, id, description, status)
	if err != nil {
		return nil, err
	}

	s.invalidateAndPublish(ctx, id, "updated")
	return category, nil
}

// Delete removes the record, then requests deletion of its image. An asset
// deletion failure is logged and never undoes the record deletion.
func (s *CategoryService) Delete(ctx context.Context, id int64) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Delete")
	defer span.End()

	category, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.assets.Delete(ctx, category.ImageRef) {
		s.logger.Warn("Category deleted but its image was not",
			zap.Int64("category_id", id),
			zap.String("ref", category.ImageRef))
	}

	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	s.invalidateAndPublish(ctx, id, "deleted")
	return category, nil
}

// List returns all categories, newest-created first
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.List")
	defer span.End()

	var cached []models.Category
	if hit, err := s.cache.GetJSON(ctx, redisclient.KeyCategories, &cached); err != nil {
		s.logger.Warn("Category cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, redisclient.KeyCategories, categories, s.cacheTTL); err != nil {
		s.logger.Warn("Category cache write failed", zap.Error(err))
	}
	return categories, nil
}

// Get returns a single category
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CategoryService.Get")
	defer span.End()

	return s.store.GetCategoryByID(ctx, id)
}

func (s *CategoryService) invalidateAndPublish(ctx context.Context, id int64, action string) {
	if err := s.cache.Invalidate(ctx, redisclient.KeyCategories); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}

	event := &models.CatalogChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogChanged,
			Timestamp: time.Now(),
		},
		Entity:   "category",
		EntityID: id,
		Action:   action,
	}
	if err := s.publisher.PublishCatalogChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish CatalogChanged event", zap.Error(err))
	}
}

// titleCase capitalizes the first letter of each word and lowercases the
// rest, the normalization applied to category names before the uniqueness
// check.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
