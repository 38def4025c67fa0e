// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/receipt"
	"gorm.io/gorm"
)

// PaymentHandler handles checkout, verification and receipt endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	cartService    *cart.Service
	productService *product.Service
	userService    *user.Service
	receiptService *receipt.Service
	config         *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *PaymentHandler {
	products := product.NewService(db)
	carts := cart.NewService(db, products, logger)
	gateway := payment.NewPaystackClient(&cfg.External.Paystack)

	return &PaymentHandler{
		paymentService: payment.NewService(db, gateway, carts, &cfg.External.Paystack, logger),
		cartService:    carts,
		productService: products,
		userService:    user.NewService(db, cfg),
		receiptService: receipt.NewService(cfg),
		config:         cfg,
	}
}

// Checkout handles POST /payments/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	email, _ := middleware.GetUserEmailFromContext(c)

	resp, err := h.paymentService.CreatePayment(c.Request.Context(), userID, email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment initialized successfully",
		"data":    resp,
	})
}

// Verify handles GET /payments/verify/:reference
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")

	p, err := h.paymentService.VerifyPayment(c.Request.Context(), reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verification completed",
		"data":    p,
	})
}

// GetPayment handles GET /payments/:reference
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	reference := c.Param("reference")

	p, err := h.paymentService.GetByReference(reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment retrieved successfully",
		"data":    p,
	})
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	payments, err := h.paymentService.GetUserPayments(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payments retrieved successfully",
		"data":    payments,
	})
}

// GetReceipt handles GET /payments/:reference/receipt
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	reference := c.Param("reference")

	p, err := h.paymentService.GetByReference(reference)
	if err != nil {
		respondError(c, err)
		return
	}
	if p.UserID != userID {
		respondError(c, apperror.New(apperror.KindNotFound, "payment %s not found", reference))
		return
	}
	if p.Status != payment.StatusSuccess {
		respondError(c, apperror.New(apperror.KindInvalidState, "receipt is only available for successful payments"))
		return
	}

	data, err := h.buildReceiptData(p)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := h.receiptService.GenerateReceipt(*data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", reference))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}

func (h *PaymentHandler) buildReceiptData(p *payment.Payment) (*receipt.ReceiptData, error) {
	purchased, err := h.cartService.GetByID(p.CartID)
	if err != nil {
		return nil, err
	}
	buyer, err := h.userService.GetByID(p.UserID)
	if err != nil {
		return nil, err
	}

	items := make([]receipt.LineItem, 0, len(purchased.Items))
	for _, line := range purchased.Items {
		name := fmt.Sprintf("Product %d", line.ProductID)
		if prod, err := h.productService.GetProduct(line.ProductID); err == nil {
			name = prod.Name
		}
		items = append(items, receipt.LineItem{
			ProductName: name,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
			Subtotal:    line.Subtotal(),
		})
	}

	return &receipt.ReceiptData{
		Reference:     p.Reference,
		Date:          p.UpdatedAt.Format("January 2, 2006"),
		CustomerName:  buyer.Name,
		CustomerEmail: buyer.Email,
		Items:         items,
		Total:         purchased.TotalAmount,
	}, nil
}
