// internal/domain/product/service_test.go
package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Product{}, &ProductSize{}))

	return NewService(db), db
}

func TestCreateProduct(t *testing.T) {
	svc, _ := setupService(t)

	prod, err := svc.CreateProduct(&CreateProductRequest{
		Name:     "Air Max 97",
		Category: "sneakers",
		Sizes: []CreateSizeRequest{
			{Size: "M", Quantity: 10, Price: 2750},
			{Size: "L", Quantity: 5, Price: 2950},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "air-max-97", prod.Slug)
	assert.InDelta(t, 4.5, prod.RatingsAverage, 0.001)
	assert.Equal(t, 0, prod.RatingsQuantity)
	assert.Len(t, prod.Sizes, 2)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetProduct(999)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetSizePrice(t *testing.T) {
	svc, _ := setupService(t)

	prod, err := svc.CreateProduct(&CreateProductRequest{
		Name: "Air Max 97",
		Sizes: []CreateSizeRequest{
			{Size: "M", Quantity: 10, Price: 2750},
		},
	})
	require.NoError(t, err)

	price, err := svc.GetSizePrice(prod.ID, "M")
	require.NoError(t, err)
	assert.Equal(t, int64(2750), price)
}

func TestGetSizePrice_MissingSize(t *testing.T) {
	svc, _ := setupService(t)

	prod, err := svc.CreateProduct(&CreateProductRequest{
		Name: "Air Max 97",
		Sizes: []CreateSizeRequest{
			{Size: "M", Quantity: 10, Price: 2750},
		},
	})
	require.NoError(t, err)

	_, err = svc.GetSizePrice(prod.ID, "XXL")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetSizePrice_MissingProduct(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetSizePrice(999, "M")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetProducts_FilterByCategory(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CreateProduct(&CreateProductRequest{
		Name:     "Air Max 97",
		Category: "sneakers",
		Sizes:    []CreateSizeRequest{{Size: "M", Price: 2750}},
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(&CreateProductRequest{
		Name:     "Classic Hoodie",
		Category: "apparel",
		Sizes:    []CreateSizeRequest{{Size: "M", Price: 1200}},
	})
	require.NoError(t, err)

	all, err := svc.GetProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sneakers, err := svc.GetProducts("sneakers")
	require.NoError(t, err)
	require.Len(t, sneakers, 1)
	assert.Equal(t, "Air Max 97", sneakers[0].Name)
}
