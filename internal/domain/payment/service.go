// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service drives the payment lifecycle: checkout creates a pending
// payment against the gateway, verification settles it into a terminal
// status exactly once.
type Service struct {
	db      *gorm.DB
	gateway Gateway
	carts   *cart.Service
	config  *config.PaystackConfig
	logger  *logrus.Logger
}

// NewService creates a new payment service
func NewService(db *gorm.DB, gateway Gateway, carts *cart.Service, cfg *config.PaystackConfig, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		gateway: gateway,
		carts:   carts,
		config:  cfg,
		logger:  logger,
	}
}

// CheckoutResponse is returned when a payment is initialized.
type CheckoutResponse struct {
	Payment          *Payment `json:"payment"`
	AuthorizationURL string   `json:"authorization_url"`
	AccessCode       string   `json:"access_code"`
}

// CreatePayment initializes a gateway transaction for the user's
// active cart. Cart totals are kept in whole currency units; the
// gateway is charged in minor units, so the amount is converted here.
// The payment row is persisted only after the gateway accepts the
// transaction, so a gateway failure leaves no dangling record.
func (s *Service) CreatePayment(ctx context.Context, userID uint, email string) (*CheckoutResponse, error) {
	c, err := s.carts.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, apperror.New(apperror.KindInvalidState, "cart %d is empty", c.ID)
	}

	amount := c.TotalAmount * 100

	result, err := s.gateway.Initialize(ctx, email, amount, s.config.CallbackURL)
	if err != nil {
		return nil, err
	}

	p := Payment{
		UserID:    userID,
		CartID:    c.ID,
		Reference: result.Reference,
		Amount:    amount,
		Status:    StatusPending,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"cart_id":   c.ID,
		"reference": p.Reference,
		"amount":    amount,
	}).Info("Payment initialized")

	return &CheckoutResponse{
		Payment:          &p,
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
	}, nil
}

// VerifyPayment settles the payment identified by reference. A payment
// already in a terminal status is returned unchanged without calling
// the gateway, so repeated verification is a cheap no-op. A gateway
// failure is reported to the caller and leaves the payment pending for
// a later retry; it is never recorded as a failed transaction.
func (s *Service) VerifyPayment(ctx context.Context, reference string) (*Payment, error) {
	p, err := s.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return p, nil
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	status, settled := settleStatus(result.Status)
	if !settled {
		// The gateway has not reached an outcome yet
		return p, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Payment{}).
			Where("reference = ? AND status = ?", reference, StatusPending).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("failed to settle payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent verification settled it first; keep that outcome
			return nil
		}
		if status == StatusSuccess {
			return s.carts.MarkPaid(tx, p.CartID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p, err = s.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference": reference,
		"status":    p.Status,
	}).Info("Payment verified")

	return p, nil
}

// GetByReference loads a payment by its gateway reference.
func (s *Service) GetByReference(reference string) (*Payment, error) {
	var p Payment
	err := s.db.Where("reference = ?", reference).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "payment %s not found", reference)
		}
		return nil, fmt.Errorf("failed to retrieve payment: %w", err)
	}
	return &p, nil
}

// GetUserPayments lists a user's payments, newest first.
func (s *Service) GetUserPayments(userID uint) ([]Payment, error) {
	var payments []Payment
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}
	return payments, nil
}

// settleStatus maps a gateway status string to a terminal payment
// status. Statuses that do not represent an outcome yet (pending,
// ongoing) report settled=false.
func settleStatus(gatewayStatus string) (status string, settled bool) {
	switch gatewayStatus {
	case "success":
		return StatusSuccess, true
	case "failed", "abandoned", "reversed":
		return StatusFailed, true
	default:
		return "", false
	}
}
