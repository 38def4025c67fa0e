// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	CoverImage  string              `json:"cover_image"`
	Sizes       []CreateSizeRequest `json:"sizes" binding:"required,min=1,dive"`
}

// CreateSizeRequest represents one size variant in a create request
type CreateSizeRequest struct {
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price" binding:"required,min=1"`
}

// GetProduct retrieves a product with its size variants
func (s *Service) GetProduct(productID uint) (*Product, error) {
	var prod Product
	err := s.db.Preload("Sizes").First(&prod, productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.New(apperror.KindNotFound, "product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// GetProducts lists products, optionally filtered by category
func (s *Service) GetProducts(category string) ([]Product, error) {
	query := s.db.Preload("Sizes")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var products []Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// GetSizePrice resolves the unit price for a product size variant.
// This is the lookup the cart uses to snapshot prices at add time.
func (s *Service) GetSizePrice(productID uint, size string) (int64, error) {
	var variant ProductSize
	err := s.db.Where("product_id = ? AND size = ?", productID, size).First(&variant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Distinguish a missing product from a missing size variant
			var count int64
			s.db.Model(&Product{}).Where("id = ?", productID).Count(&count)
			if count == 0 {
				return 0, apperror.New(apperror.KindNotFound, "product %d not found", productID)
			}
			return 0, apperror.New(apperror.KindNotFound, "size %s not found for product %d", size, productID)
		}
		return 0, fmt.Errorf("failed to resolve size price: %w", err)
	}
	return variant.Price, nil
}

// CreateProduct creates a product with its size variants
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	prod := Product{
		Name:           strings.TrimSpace(req.Name),
		Slug:           slugify(req.Name),
		Description:    strings.TrimSpace(req.Description),
		Category:       req.Category,
		CoverImage:     req.CoverImage,
		RatingsAverage: 4.5,
	}

	for _, size := range req.Sizes {
		if size.Price <= 0 {
			return nil, apperror.New(apperror.KindInvalidInput, "size %s must have a positive price", size.Size)
		}
		prod.Sizes = append(prod.Sizes, ProductSize{
			Size:     size.Size,
			Quantity: size.Quantity,
			Price:    size.Price,
		})
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &prod, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
