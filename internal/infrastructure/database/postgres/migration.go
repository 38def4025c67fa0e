// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&product.Product{},
		&product.ProductSize{},

		&cart.Cart{},
		&cart.CartItem{},

		&payment.Payment{},

		&review.Review{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes not covered by model tags
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// One active cart per user
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user_active ON carts (user_id) WHERE is_paid = false",
		"CREATE INDEX IF NOT EXISTS idx_payments_cart_status ON payments (cart_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews (product_id, created_at DESC)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedInitialData seeds a catalog for development environments
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []product.Product{
		{
			Name:           "Air Max 97",
			Slug:           "air-max-97",
			Category:       "sneakers",
			RatingsAverage: 4.5,
			Sizes: []product.ProductSize{
				{Size: "M", Quantity: 20, Price: 2750},
				{Size: "L", Quantity: 15, Price: 2950},
			},
		},
		{
			Name:           "Classic Hoodie",
			Slug:           "classic-hoodie",
			Category:       "apparel",
			RatingsAverage: 4.5,
			Sizes: []product.ProductSize{
				{Size: "S", Quantity: 30, Price: 1200},
				{Size: "M", Quantity: 30, Price: 1200},
				{Size: "L", Quantity: 25, Price: 1300},
			},
		},
	}

	for _, p := range products {
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
	}

	log.Println("Seeded development catalog")
	return nil
}
