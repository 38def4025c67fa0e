// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Slug           string         `gorm:"index;size:255" json:"slug"`
	Description    string         `gorm:"type:text" json:"description"`
	Category       string         `gorm:"size:100;index" json:"category"`
	CoverImage     string         `gorm:"size:500" json:"cover_image"`
	RatingsAverage float64        `gorm:"default:4.5" json:"ratings_average"`
	RatingsQuantity int           `gorm:"default:0" json:"ratings_quantity"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sizes []ProductSize `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sizes,omitempty"`
}

// ProductSize represents one size variant of a product with its own
// price and stock quantity. Prices are in whole currency units; the
// payment layer converts to the gateway's minor units at checkout.
type ProductSize struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:idx_product_sizes_product_size" json:"product_id"`
	Size      string    `gorm:"not null;size:20;uniqueIndex:idx_product_sizes_product_size" json:"size"`
	Quantity  int       `gorm:"default:0" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string     { return "products" }
func (ProductSize) TableName() string { return "product_sizes" }

// SizePrice returns the price for a size variant if it exists.
func (p *Product) SizePrice(size string) (int64, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Price, true
		}
	}
	return 0, false
}
