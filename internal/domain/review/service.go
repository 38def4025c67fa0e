// internal/domain/review/service.go
package review

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Defaults used for a product with no reviews.
const (
	defaultRatingsAverage  = 4.5
	defaultRatingsQuantity = 0
)

// Service handles review business logic and keeps each product's
// rating aggregate in step with its reviews.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new review service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// UpdateReviewRequest represents review update data
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// CreateReview creates a review and recomputes the product's rating
// aggregate in the same transaction.
func (s *Service) CreateReview(userID uint, req *CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.New(apperror.KindInvalidInput, "rating must be between 1 and 5")
	}

	var count int64
	if err := s.db.Model(&product.Product{}).Where("id = ?", req.ProductID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return nil, apperror.New(apperror.KindNotFound, "product %d not found", req.ProductID)
	}

	rev := Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rev).Error; err != nil {
			if isDuplicateKey(err) {
				return apperror.New(apperror.KindInvalidState, "user %d already reviewed product %d", userID, req.ProductID)
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		return s.Recompute(tx, req.ProductID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": req.ProductID,
		"rating":     req.Rating,
	}).Info("Review created")

	return &rev, nil
}

// UpdateReview changes the caller's review and recomputes the aggregate.
func (s *Service) UpdateReview(userID uint, reviewID uint, req *UpdateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.New(apperror.KindInvalidInput, "rating must be between 1 and 5")
	}

	var rev Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(&rev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "review %d not found", reviewID)
			}
			return fmt.Errorf("failed to retrieve review: %w", err)
		}

		rev.Rating = req.Rating
		rev.Comment = strings.TrimSpace(req.Comment)
		if err := tx.Model(&Review{}).Where("id = ?", rev.ID).Updates(map[string]interface{}{
			"rating":  rev.Rating,
			"comment": rev.Comment,
		}).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		return s.Recompute(tx, rev.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// DeleteReview removes the caller's review and recomputes the
// aggregate. The row is read first to learn which product to
// recompute.
func (s *Service) DeleteReview(userID uint, reviewID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var rev Review
		if err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(&rev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.KindNotFound, "review %d not found", reviewID)
			}
			return fmt.Errorf("failed to retrieve review: %w", err)
		}

		if err := tx.Delete(&Review{}, rev.ID).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return s.Recompute(tx, rev.ProductID)
	})
}

// GetProductReviews lists reviews for a product, newest first.
func (s *Service) GetProductReviews(productID uint) ([]Review, error) {
	var reviews []Review
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}

// Recompute recalculates a product's ratings quantity and average from
// its reviews, inside the caller's transaction. With no reviews the
// product falls back to the defaults. The average is rounded to one
// decimal place.
func (s *Service) Recompute(tx *gorm.DB, productID uint) error {
	var stats struct {
		Count int64
		Avg   float64
	}
	err := tx.Model(&Review{}).
		Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as avg").
		Where("product_id = ?", productID).
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	average := defaultRatingsAverage
	quantity := defaultRatingsQuantity
	if stats.Count > 0 {
		average = math.Round(stats.Avg*10) / 10
		quantity = int(stats.Count)
	}

	err = tx.Model(&product.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"ratings_average":  average,
			"ratings_quantity": quantity,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update rating aggregate: %w", err)
	}
	return nil
}

// isDuplicateKey detects unique constraint violations across drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
