// internal/domain/user/service_test.go
package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 7 * 24 * time.Hour
	cfg.Security.BcryptCost = 4

	return NewService(db, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupService(t)

	resp, err := svc.Register(&RegisterRequest{
		Email:           "User@Example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Name:            "Test User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user@example.com", resp.User.Email)
	assert.Empty(t, resp.User.Password)

	login, err := svc.Login(&LoginRequest{
		Email:    "user@example.com",
		Password: "Secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(&RegisterRequest{
		Email:           "user@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret124",
		Name:            "Test User",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(&RegisterRequest{
		Email:           "user@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Name:            "Test User",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Email:           "user@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Name:            "Other User",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(&RegisterRequest{
		Email:           "user@example.com",
		Password:        "short",
		ConfirmPassword: "short",
		Name:            "Test User",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(&RegisterRequest{
		Email:           "user@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Name:            "Test User",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{
		Email:    "user@example.com",
		Password: "Wrong1234",
	})
	require.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc := setupService(t)

	resp, err := svc.Register(&RegisterRequest{
		Email:           "user@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Name:            "Test User",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token cannot be used as a refresh token
	_, err = svc.RefreshToken(resp.AccessToken)
	require.Error(t, err)
}
