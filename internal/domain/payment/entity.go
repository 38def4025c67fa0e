// internal/domain/payment/entity.go
package payment

import (
	"time"
)

// Payment status values. A payment starts pending and moves to exactly
// one terminal status; terminal rows are never rewritten.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment represents one checkout attempt against the gateway. Amount
// is in the gateway's minor currency units (kobo). Reference is the
// gateway's transaction reference and the idempotency key for
// verification.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	Reference string    `gorm:"uniqueIndex;not null;size:100" json:"reference"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Status    string    `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Payment) TableName() string { return "payments" }

// IsTerminal reports whether the payment has reached a final status.
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}
