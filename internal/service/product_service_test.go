package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCategoryID = int64(7)

func newProductFixture() (*ProductService, *fakeProductStore, *fakeAssets, *fakePublisher) {
	store := newFakeProductStore(testCategoryID)
	assetStore := newFakeAssets()
	publisher := &fakePublisher{}
	svc := NewProductService(store, assetStore, newFakeCache(), publisher, time.Minute)
	return svc, store, assetStore, publisher
}

func validFields() ProductFields {
	return ProductFields{
		Name:        "Trail Runner",
		Description: "Lightweight trail running shoe",
		Price:       "19.5",
		Quantity:    "10",
		CategoryID:  testCategoryID,
		Offer:       "15",
		Status:      "active",
	}
}

func twoImages(assetStore *fakeAssets) []string {
	return []string{assetStore.put(), assetStore.put()}
}

func TestCreateProductRoundsPriceToTwoDecimals(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	product, err := svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)

	assert.Equal(t, "19.50", product.Price.StringFixed(2))
	assert.Len(t, product.ImageRefs, 2)
}

func TestCreateProductWrongImageCount(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	for _, count := range []int{1, 3} {
		refs := make([]string, 0, count)
		for i := 0; i < count; i++ {
			refs = append(refs, assetStore.put())
		}

		_, err := svc.Create(ctx, validFields(), refs)

		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "images")
		for _, ref := range refs {
			assert.False(t, assetStore.Exists(ctx, ref), "every supplied image must be removed on rejection")
		}
	}
}

func TestCreateProductBatchesValidationFailures(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	fields := ProductFields{
		Name:        strings.Repeat("x", 300),
		Description: "",
		Price:       "-2",
		Quantity:    "-1",
		CategoryID:  999, // unknown
		Offer:       "150",
		Status:      "",
	}
	refs := twoImages(assetStore)

	_, err := svc.Create(ctx, fields, refs)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	for _, field := range []string{"name", "description", "price", "quantity", "offer", "status", "category"} {
		assert.Contains(t, ve.Fields, field)
	}
	for _, ref := range refs {
		assert.False(t, assetStore.Exists(ctx, ref))
	}
}

func TestEditProductSingleImageInvalid(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)

	lone := assetStore.put()
	_, err = svc.Edit(ctx, created.ID, validFields(), []string{lone}, nil)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "images")
	assert.False(t, assetStore.Exists(ctx, lone))
}

func TestEditProductKeepsImagesWhenNoneSupplied(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)

	fields := validFields()
	fields.Price = "25"
	updated, err := svc.Edit(ctx, created.ID, fields, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string(created.ImageRefs), []string(updated.ImageRefs))
	assert.Empty(t, assetStore.deleted)
	assert.Equal(t, "25.00", updated.Price.StringFixed(2))
}

func TestEditProductReplacesImagesAfterUpdate(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	oldRefs := twoImages(assetStore)
	created, err := svc.Create(ctx, validFields(), oldRefs)
	require.NoError(t, err)

	newRefs := twoImages(assetStore)
	updated, err := svc.Edit(ctx, created.ID, validFields(), newRefs, oldRefs)
	require.NoError(t, err)

	assert.Equal(t, newRefs, []string(updated.ImageRefs))
	for _, ref := range oldRefs {
		assert.Equal(t, 1, assetStore.deleteCount(ref), "each replaced image deleted exactly once")
	}
	for _, ref := range newRefs {
		assert.True(t, assetStore.Exists(ctx, ref))
	}
}

func TestEditProductNotFoundCleansUpUploads(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	refs := twoImages(assetStore)
	_, err := svc.Edit(ctx, 404, validFields(), refs, nil)

	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	for _, ref := range refs {
		assert.False(t, assetStore.Exists(ctx, ref))
	}
}

func TestDeleteProductDeletesEachImageOnce(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	refs := twoImages(assetStore)
	created, err := svc.Create(ctx, validFields(), refs)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	for _, ref := range refs {
		assert.Equal(t, 1, assetStore.deleteCount(ref))
	}
}

func TestAddReview(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, created.ID, 11, 6, "too good to be true")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "rating")

	review, err := svc.AddReview(ctx, created.ID, 11, 3, "decent shoe")
	require.NoError(t, err)
	assert.Equal(t, 3, review.Rating)
	assert.Equal(t, created.ID, review.ProductID)

	_, err = svc.AddReview(ctx, created.ID, 11, 4, "changed my mind")
	var ce *apperr.ConflictError
	require.ErrorAs(t, err, &ce, "second review from the same author must conflict")

	product, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, product.Reviews, 1)
	assert.Equal(t, "decent shoe", product.Reviews[0].Body)
}

func TestAddReviewProductNotFound(t *testing.T) {
	svc, _, _, _ := newProductFixture()

	_, err := svc.AddReview(context.Background(), 404, 11, 3, "ghost product")

	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDeleteReviewWithoutOwnershipCheck(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)

	review, err := svc.AddReview(ctx, created.ID, 11, 4, "solid")
	require.NoError(t, err)

	// No actor identity is required at this layer.
	require.NoError(t, svc.DeleteReview(ctx, created.ID, review.ID))

	product, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, product.Reviews)
}

func TestListByMaxPriceDescending(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	for _, price := range []string{"10", "30", "20", "99"} {
		fields := validFields()
		fields.Price = price
		_, err := svc.Create(ctx, fields, twoImages(assetStore))
		require.NoError(t, err)
	}

	products, err := svc.ListByMaxPrice(ctx, "50")
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, "30.00", products[0].Price.StringFixed(2))
	assert.Equal(t, "20.00", products[1].Price.StringFixed(2))
	assert.Equal(t, "10.00", products[2].Price.StringFixed(2))
}

func TestListByMaxPriceRejectsBadCeiling(t *testing.T) {
	svc, _, _, _ := newProductFixture()

	_, err := svc.ListByMaxPrice(context.Background(), "not-a-number")

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestListByIDsHydratesCart(t *testing.T) {
	svc, _, assetStore, _ := newProductFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validFields(), twoImages(assetStore))
	require.NoError(t, err)

	products, err := svc.ListByIDs(ctx, []int64{first.ID, 12345})
	require.NoError(t, err)

	require.Len(t, products, 1, "unknown ids are silently absent")
	assert.Equal(t, first.ID, products[0].ID)
}
