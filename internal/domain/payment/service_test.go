// internal/domain/payment/service_test.go
package payment

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeGateway scripts gateway answers and counts calls.
type fakeGateway struct {
	initResult   *InitializeResult
	initErr      error
	initCalls    int
	initAmount   int64
	verifyResult *VerifyResult
	verifyErr    error
	verifyCalls  int
}

func (f *fakeGateway) Initialize(_ context.Context, _ string, amount int64, _ string) (*InitializeResult, error) {
	f.initCalls++
	f.initAmount = amount
	if f.initErr != nil {
		return nil, f.initErr
	}
	return f.initResult, nil
}

func (f *fakeGateway) Verify(_ context.Context, _ string) (*VerifyResult, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

type fixture struct {
	db      *gorm.DB
	carts   *cart.Service
	gateway *fakeGateway
	svc     *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&product.Product{},
		&product.ProductSize{},
		&cart.Cart{},
		&cart.CartItem{},
		&Payment{},
	))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	carts := cart.NewService(db, product.NewService(db), logger)
	gateway := &fakeGateway{
		initResult: &InitializeResult{
			Reference:        "ref-123",
			AuthorizationURL: "https://checkout.paystack.com/ref-123",
			AccessCode:       "ac-123",
		},
	}
	cfg := &config.PaystackConfig{
		SecretKey:   "sk_test_secret",
		CallbackURL: "http://localhost:8080/api/v1",
	}

	return &fixture{
		db:      db,
		carts:   carts,
		gateway: gateway,
		svc:     NewService(db, gateway, carts, cfg, logger),
	}
}

// seedCart creates a product and an active cart totalling 5500 for
// user 1.
func seedCart(t *testing.T, f *fixture) *cart.Cart {
	t.Helper()

	prod := product.Product{
		Name: "Air Max",
		Sizes: []product.ProductSize{
			{Size: "M", Quantity: 10, Price: 2750},
		},
	}
	require.NoError(t, f.db.Create(&prod).Error)

	c, err := f.carts.AddItems(1, []cart.AddItemRequest{
		{ProductID: prod.ID, Size: "M", Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, int64(5500), c.TotalAmount)
	return c
}

func TestCreatePayment_ConvertsToMinorUnits(t *testing.T) {
	f := setup(t)
	c := seedCart(t, f)

	resp, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(550000), f.gateway.initAmount)
	assert.Equal(t, int64(550000), resp.Payment.Amount)
	assert.Equal(t, StatusPending, resp.Payment.Status)
	assert.Equal(t, c.ID, resp.Payment.CartID)
	assert.Equal(t, "ref-123", resp.Payment.Reference)
	assert.Equal(t, "https://checkout.paystack.com/ref-123", resp.AuthorizationURL)
}

func TestCreatePayment_NoActiveCart(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Zero(t, f.gateway.initCalls)
}

func TestCreatePayment_EmptyCart(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Create(&cart.Cart{UserID: 1}).Error)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	assert.Zero(t, f.gateway.initCalls)
}

func TestCreatePayment_GatewayFailureLeavesNoRecord(t *testing.T) {
	f := setup(t)
	seedCart(t, f)
	f.gateway.initErr = apperror.New(apperror.KindGateway, "paystack request failed")

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.Error(t, err)
	assert.Equal(t, apperror.KindGateway, apperror.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyPayment_SuccessMarksCartPaid(t *testing.T) {
	f := setup(t)
	c := seedCart(t, f)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.NoError(t, err)

	f.gateway.verifyResult = &VerifyResult{Reference: "ref-123", Status: "success", Amount: 550000}

	p, err := f.svc.VerifyPayment(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Status)

	var paid cart.Cart
	require.NoError(t, f.db.First(&paid, c.ID).Error)
	assert.True(t, paid.IsPaid)
}

func TestVerifyPayment_FailedLeavesCartUnpaid(t *testing.T) {
	f := setup(t)
	c := seedCart(t, f)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.NoError(t, err)

	f.gateway.verifyResult = &VerifyResult{Reference: "ref-123", Status: "failed"}

	p, err := f.svc.VerifyPayment(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.Status)

	var unpaid cart.Cart
	require.NoError(t, f.db.First(&unpaid, c.ID).Error)
	assert.False(t, unpaid.IsPaid)
}

func TestVerifyPayment_IdempotentAfterTerminal(t *testing.T) {
	f := setup(t)
	seedCart(t, f)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.NoError(t, err)

	f.gateway.verifyResult = &VerifyResult{Reference: "ref-123", Status: "success"}

	p, err := f.svc.VerifyPayment(context.Background(), "ref-123")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, p.Status)
	require.Equal(t, 1, f.gateway.verifyCalls)

	// A second verification returns the settled payment without
	// consulting the gateway again.
	f.gateway.verifyResult = &VerifyResult{Reference: "ref-123", Status: "failed"}

	p, err = f.svc.VerifyPayment(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Status)
	assert.Equal(t, 1, f.gateway.verifyCalls)
}

func TestVerifyPayment_GatewayErrorKeepsPending(t *testing.T) {
	f := setup(t)
	seedCart(t, f)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.NoError(t, err)

	f.gateway.verifyErr = apperror.New(apperror.KindGateway, "timeout")

	_, err = f.svc.VerifyPayment(context.Background(), "ref-123")
	require.Error(t, err)
	assert.Equal(t, apperror.KindGateway, apperror.KindOf(err))

	p, err := f.svc.GetByReference("ref-123")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)

	// A later retry can still settle the payment
	f.gateway.verifyErr = nil
	f.gateway.verifyResult = &VerifyResult{Reference: "ref-123", Status: "success"}

	p, err = f.svc.VerifyPayment(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Status)
}

func TestVerifyPayment_UnsettledGatewayStatus(t *testing.T) {
	f := setup(t)
	seedCart(t, f)

	_, err := f.svc.CreatePayment(context.Background(), 1, "user@example.com")
	require.NoError(t, err)

	f.gateway.verifyResult = &VerifyResult{Reference: "ref-123", Status: "ongoing"}

	p, err := f.svc.VerifyPayment(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
}

func TestVerifyPayment_UnknownReference(t *testing.T) {
	f := setup(t)

	_, err := f.svc.VerifyPayment(context.Background(), "missing-ref")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Zero(t, f.gateway.verifyCalls)
}
