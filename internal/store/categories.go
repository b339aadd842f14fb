package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

// CreateCategory inserts a category. A unique-name violation surfaces as a
// ConflictError so a racing duplicate is caught even after the name check.
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, description, status, image_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := s.db.GetContext(ctx, category, query,
		category.Name, category.Description, category.Status, category.ImageRef)
	if isUniqueViolation(err) {
		return apperr.Conflict("category already exists")
	}
	return err
}

// GetCategoryByName retrieves a category by case-insensitive name.
// Returns nil without error when no category matches.
func (s *Store) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category,
		"SELECT * FROM categories WHERE LOWER(name) = LOWER($1)", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByID retrieves a category by ID
func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category, "SELECT * FROM categories WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category", id)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CategoryExists reports whether a category with the given ID exists
func (s *Store) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)", id)
	return exists, err
}

// UpdateCategory updates the mutable fields only; name is immutable after
// creation.
func (s *Store) UpdateCategory(ctx context.Context, id int64, description, status string) (*models.Category, error) {
	query := `
		UPDATE categories
		SET description = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING *`

	var category models.Category
	err := s.db.GetContext(ctx, &category, query, description, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes a category and returns the deleted record so the
// caller can release its image.
func (s *Store) DeleteCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category,
		"DELETE FROM categories WHERE id = $1 RETURNING *", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}
	return &category, nil
}

// GetCategories retrieves all categories, newest-created first
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories ORDER BY id DESC")
	return categories, err
}
