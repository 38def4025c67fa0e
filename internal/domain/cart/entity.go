// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart represents a user's shopping cart. A user has at most one active
// (unpaid) cart; paid carts are kept for history and a fresh one is
// created on the next add.
type Cart struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	TotalAmount int64      `gorm:"not null;default:0" json:"total_amount"`
	IsPaid      bool       `gorm:"not null;default:false;index" json:"is_paid"`
	Version     int        `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem represents one product size line in a cart. Price is a
// snapshot of the product size price at the time the item was added.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_product_size" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product_size" json:"product_id"`
	Size      string    `gorm:"not null;size:20;uniqueIndex:idx_cart_items_cart_product_size" json:"size"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// Subtotal returns the line total for an item.
func (i *CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// computeTotal sums line totals. The stored TotalAmount must always
// equal this sum.
func computeTotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
