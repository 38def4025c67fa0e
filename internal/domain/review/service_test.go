// internal/domain/review/service_test.go
package review

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&product.Product{},
		&product.ProductSize{},
		&Review{},
	))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewService(db, logger), db
}

func seedProduct(t *testing.T, db *gorm.DB) *product.Product {
	t.Helper()

	prod := product.Product{Name: "Air Max", RatingsAverage: 4.5}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

func getProduct(t *testing.T, db *gorm.DB, id uint) *product.Product {
	t.Helper()

	var prod product.Product
	require.NoError(t, db.First(&prod, id).Error)
	return &prod
}

func TestCreateReview_UpdatesAggregate(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	_, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 4, Comment: "solid"})
	require.NoError(t, err)
	_, err = svc.CreateReview(2, &CreateReviewRequest{ProductID: prod.ID, Rating: 5})
	require.NoError(t, err)

	got := getProduct(t, db, prod.ID)
	assert.Equal(t, 2, got.RatingsQuantity)
	assert.InDelta(t, 4.5, got.RatingsAverage, 0.001)
}

func TestCreateReview_AverageRoundedToOneDecimal(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	// 4, 4, 5 averages to 4.333..., stored as 4.3
	_, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 4})
	require.NoError(t, err)
	_, err = svc.CreateReview(2, &CreateReviewRequest{ProductID: prod.ID, Rating: 4})
	require.NoError(t, err)
	_, err = svc.CreateReview(3, &CreateReviewRequest{ProductID: prod.ID, Rating: 5})
	require.NoError(t, err)

	got := getProduct(t, db, prod.ID)
	assert.Equal(t, 3, got.RatingsQuantity)
	assert.InDelta(t, 4.3, got.RatingsAverage, 0.001)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	_, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 4})
	require.NoError(t, err)

	_, err = svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 5})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	// The aggregate still reflects the single review
	got := getProduct(t, db, prod.ID)
	assert.Equal(t, 1, got.RatingsQuantity)
	assert.InDelta(t, 4.0, got.RatingsAverage, 0.001)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: rating})
		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
	}
}

func TestCreateReview_UnknownProduct(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: 999, Rating: 4})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUpdateReview_RecomputesAggregate(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	rev, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 2})
	require.NoError(t, err)

	_, err = svc.UpdateReview(1, rev.ID, &UpdateReviewRequest{Rating: 5, Comment: "changed my mind"})
	require.NoError(t, err)

	got := getProduct(t, db, prod.ID)
	assert.Equal(t, 1, got.RatingsQuantity)
	assert.InDelta(t, 5.0, got.RatingsAverage, 0.001)
}

func TestUpdateReview_OnlyOwner(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	rev, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 2})
	require.NoError(t, err)

	_, err = svc.UpdateReview(2, rev.ID, &UpdateReviewRequest{Rating: 5})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteReview_LastReviewRestoresDefaults(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	rev, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 1})
	require.NoError(t, err)

	got := getProduct(t, db, prod.ID)
	assert.Equal(t, 1, got.RatingsQuantity)
	assert.InDelta(t, 1.0, got.RatingsAverage, 0.001)

	require.NoError(t, svc.DeleteReview(1, rev.ID))

	got = getProduct(t, db, prod.ID)
	assert.Equal(t, 0, got.RatingsQuantity)
	assert.InDelta(t, 4.5, got.RatingsAverage, 0.001)
}

func TestDeleteReview_NotFound(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.DeleteReview(1, 999)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetProductReviews(t *testing.T) {
	svc, db := setupService(t)
	prod := seedProduct(t, db)

	_, err := svc.CreateReview(1, &CreateReviewRequest{ProductID: prod.ID, Rating: 4, Comment: "good"})
	require.NoError(t, err)
	_, err = svc.CreateReview(2, &CreateReviewRequest{ProductID: prod.ID, Rating: 5, Comment: "great"})
	require.NoError(t, err)

	reviews, err := svc.GetProductReviews(prod.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
