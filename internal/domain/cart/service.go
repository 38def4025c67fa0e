// internal/domain/cart/service.go
package cart

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db       *gorm.DB
	products *product.Service
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, products *product.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		products: products,
		logger:   logger,
	}
}

// AddItemRequest represents one item to add to the cart
type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change for a cart item
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the user's active cart with its items.
func (s *Service) GetCart(userID uint) (*Cart, error) {
	var c Cart
	err := s.db.Preload("Items").
		Where("user_id = ? AND is_paid = ?", userID, false).
		First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.New(apperror.KindNotFound, "no active cart for user %d", userID)
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

// AddItems adds items to the user's active cart, creating the cart if
// none exists. An item matching an existing line on (product, size) is
// merged into that line by increasing its quantity; the line keeps the
// price it was first added at. Concurrent modifications of the same
// cart are detected through the cart version and reported as conflicts.
func (s *Service) AddItems(userID uint, items []AddItemRequest) (*Cart, error) {
	if len(items) == 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "no items to add")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperror.New(apperror.KindInvalidInput, "quantity must be at least 1")
		}
	}

	var result *Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.getOrCreateActiveCart(tx, userID)
		if err != nil {
			return err
		}

		for _, item := range items {
			price, err := s.products.GetSizePrice(item.ProductID, item.Size)
			if err != nil {
				return err
			}

			merged := false
			for i := range c.Items {
				if c.Items[i].ProductID == item.ProductID && c.Items[i].Size == item.Size {
					c.Items[i].Quantity += item.Quantity
					if err := tx.Model(&CartItem{}).
						Where("id = ?", c.Items[i].ID).
						Update("quantity", c.Items[i].Quantity).Error; err != nil {
						return fmt.Errorf("failed to update cart item: %w", err)
					}
					merged = true
					break
				}
			}
			if !merged {
				line := CartItem{
					CartID:    c.ID,
					ProductID: item.ProductID,
					Size:      item.Size,
					Quantity:  item.Quantity,
					Price:     price,
				}
				if err := tx.Create(&line).Error; err != nil {
					return fmt.Errorf("failed to create cart item: %w", err)
				}
				c.Items = append(c.Items, line)
			}
		}

		return s.commitCart(tx, c)
	})
	if err != nil {
		return nil, err
	}

	// Reload so the response reflects committed state
	result, err = s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"cart_id": result.ID,
		"total":   result.TotalAmount,
	}).Info("Items added to cart")

	return result, nil
}

// UpdateItemQuantity sets the quantity of a cart item.
func (s *Service) UpdateItemQuantity(userID uint, itemID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, apperror.New(apperror.KindInvalidInput, "quantity must be at least 1")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, item, err := s.findCartItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		if err := tx.Model(&CartItem{}).
			Where("id = ?", item.ID).
			Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		for i := range c.Items {
			if c.Items[i].ID == item.ID {
				c.Items[i].Quantity = quantity
			}
		}

		return s.commitCart(tx, c)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// RemoveItem deletes an item from the user's active cart.
func (s *Service) RemoveItem(userID uint, itemID uint) (*Cart, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, item, err := s.findCartItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&CartItem{}, item.ID).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		kept := c.Items[:0]
		for _, line := range c.Items {
			if line.ID != item.ID {
				kept = append(kept, line)
			}
		}
		c.Items = kept

		return s.commitCart(tx, c)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// GetByID loads a cart by id regardless of paid status. Receipts for
// settled payments read the purchased cart through this.
func (s *Service) GetByID(cartID uint) (*Cart, error) {
	var c Cart
	err := s.db.Preload("Items").First(&c, cartID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.New(apperror.KindNotFound, "cart %d not found", cartID)
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

// MarkPaid flags a cart as paid inside the caller's transaction. The
// payment flow calls this when a gateway verification confirms success.
// The cart is kept for history; the next add creates a fresh cart.
func (s *Service) MarkPaid(tx *gorm.DB, cartID uint) error {
	result := tx.Model(&Cart{}).
		Where("id = ? AND is_paid = ?", cartID, false).
		Updates(map[string]interface{}{
			"is_paid": true,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark cart paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Already paid; marking paid is idempotent
		return nil
	}
	return nil
}

// getOrCreateActiveCart loads the user's unpaid cart, creating one if
// none exists.
func (s *Service) getOrCreateActiveCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := tx.Preload("Items").
		Where("user_id = ? AND is_paid = ?", userID, false).
		First(&c).Error
	if err == nil {
		return &c, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	c = Cart{UserID: userID}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &c, nil
}

// findCartItem loads the active cart and locates itemID within it.
func (s *Service) findCartItem(tx *gorm.DB, userID uint, itemID uint) (*Cart, *CartItem, error) {
	var c Cart
	err := tx.Preload("Items").
		Where("user_id = ? AND is_paid = ?", userID, false).
		First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperror.New(apperror.KindNotFound, "no active cart for user %d", userID)
		}
		return nil, nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c, &c.Items[i], nil
		}
	}
	return nil, nil, apperror.New(apperror.KindNotFound, "cart item %d not found", itemID)
}

// commitCart recomputes the cart total and writes it with a
// compare-and-set on the version column. A lost race means another
// request committed the cart first and surfaces as a conflict.
func (s *Service) commitCart(tx *gorm.DB, c *Cart) error {
	total := computeTotal(c.Items)

	result := tx.Model(&Cart{}).
		Where("id = ? AND version = ? AND is_paid = ?", c.ID, c.Version, false).
		Updates(map[string]interface{}{
			"total_amount": total,
			"version":      c.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.KindConflict, "cart %d was modified concurrently", c.ID)
	}

	c.TotalAmount = total
	c.Version++
	return nil
}
