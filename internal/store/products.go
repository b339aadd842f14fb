package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// productColumns selects a product with its category name populated. The
// join is LEFT because category references are soft: a product may outlive
// its category.
const productColumns = `
	SELECT p.*, COALESCE(c.name, '') AS category_name
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

// CreateProduct inserts a product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, quantity, category_id, image_refs, offer_pct, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, product, query,
		product.Name, product.Description, product.Price, product.Quantity,
		product.CategoryID, product.ImageRefs, product.OfferPct, product.Status)
}

// GetProductByID retrieves a product by ID, category-populated
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, productColumns+" WHERE p.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces every mutable field of a product
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4,
		    category_id = $5, image_refs = $6, offer_pct = $7, status = $8,
		    updated_at = NOW()
		WHERE id = $9
		RETURNING *`

	var updated models.Product
	err := s.db.GetContext(ctx, &updated, query,
		product.Name, product.Description, product.Price, product.Quantity,
		product.CategoryID, product.ImageRefs, product.OfferPct, product.Status,
		product.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product", product.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

// DeleteProduct removes a product and its reviews, returning the deleted
// record so the caller can release both images.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM product_reviews WHERE product_id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete product reviews: %w", err)
	}

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"DELETE FROM products WHERE id = $1 RETURNING *", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products, newest-created first
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, productColumns+" ORDER BY p.id DESC")
	return products, err
}

// GetProductsByCategory retrieves products referencing a category
func (s *Store) GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		productColumns+" WHERE p.category_id = $1 ORDER BY p.id DESC", categoryID)
	return products, err
}

// GetProductsBelowPrice retrieves products priced strictly below the
// ceiling, most expensive first
func (s *Store) GetProductsBelowPrice(ctx context.Context, ceiling decimal.Decimal) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		productColumns+" WHERE p.price < $1 ORDER BY p.price DESC", ceiling)
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs (cart/wishlist
// hydration); missing ids are silently absent from the result
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In(productColumns+" WHERE p.id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// InsertReview appends a review to a product's ledger. The unique index on
// (product_id, author_id) makes the one-review-per-author check atomic; a
// violation surfaces as a ConflictError.
func (s *Store) InsertReview(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO product_reviews (product_id, author_id, rating, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, review, query,
		review.ProductID, review.AuthorID, review.Rating, review.Body)
	if isUniqueViolation(err) {
		return apperr.Conflict("author has already reviewed this product")
	}
	return err
}

// GetReviewsByProduct retrieves a product's reviews, oldest first
func (s *Store) GetReviewsByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM product_reviews WHERE product_id = $1 ORDER BY id", productID)
	return reviews, err
}

// DeleteReview removes a review by id. Removing an id that is already gone
// is a no-op, matching pull-from-ledger semantics.
func (s *Store) DeleteReview(ctx context.Context, productID, reviewID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM product_reviews WHERE id = $1 AND product_id = $2",
		reviewID, productID)
	return err
}
