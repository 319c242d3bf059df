package service

import (
	"testing"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	return NewProductService(productRepo), testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(CreateProductInput{
		Name:          "Pistachio Praline",
		Description:   "Roasted pistachio with caramel shards",
		Price:         160,
		Category:      model.CategoryPremium,
		StockQuantity: 20,
		Allergens:     []string{"nuts", "milk"},
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, []string{"nuts", "milk"}, []string(product.Allergens))
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	tests := []struct {
		name    string
		input   CreateProductInput
		wantErr error
	}{
		{
			name:    "missing name",
			input:   CreateProductInput{Price: 100, Category: model.CategoryClassic},
			wantErr: ErrInvalidProductData,
		},
		{
			name:    "non-positive price",
			input:   CreateProductInput{Name: "Free Scoop", Price: 0, Category: model.CategoryClassic},
			wantErr: ErrInvalidProductData,
		},
		{
			name:    "negative stock",
			input:   CreateProductInput{Name: "Ghost Flavor", Price: 100, Category: model.CategoryClassic, StockQuantity: -1},
			wantErr: ErrInvalidProductData,
		},
		{
			name:    "unknown category",
			input:   CreateProductInput{Name: "Mystery", Price: 100, Category: model.ProductCategory("frozen")},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := productService.CreateProduct(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProductService_GetProducts_CategoryFilter(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	testDB.Create(&model.Product{Name: "Vanilla Bean", Price: 100, Category: model.CategoryClassic, StockQuantity: 10})
	testDB.Create(&model.Product{Name: "Mango Sorbet", Price: 130, Category: model.CategorySorbet, StockQuantity: 10})

	all, err := productService.GetProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sorbets, err := productService.GetProducts("sorbet")
	require.NoError(t, err)
	require.Len(t, sorbets, 1)
	assert.Equal(t, "Mango Sorbet", sorbets[0].Name)

	_, err = productService.GetProducts("frozen")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestProductService_UpdateProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	product := &model.Product{Name: "Vanilla Bean", Price: 100, Category: model.CategoryClassic, StockQuantity: 10}
	testDB.Create(product)

	newPrice := 120.0
	newStock := 15
	updated, err := productService.UpdateProduct(product.ID, UpdateProductInput{
		Price:         &newPrice,
		StockQuantity: &newStock,
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, 15, updated.StockQuantity)
	assert.Equal(t, "Vanilla Bean", updated.Name)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	_, err := productService.UpdateProduct(9999, UpdateProductInput{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	product := &model.Product{Name: "Vanilla Bean", Price: 100, Category: model.CategoryClassic, StockQuantity: 10}
	testDB.Create(product)

	deleted, err := productService.DeleteProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, deleted.ID)

	_, err = productService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct_ClearsCartReferences(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, testDB.Exec("PRAGMA foreign_keys = ON").Error)

	user := &model.User{Email: "cart@creamloft.dev", PasswordHash: "hash", Name: "Cart Holder", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{Name: "Salted Caramel", Price: 140, Category: model.CategoryPremium, StockQuantity: 5}
	require.NoError(t, testDB.Create(product).Error)

	cartItem := &model.CartItem{
		UserID:    user.ID,
		ItemKey:   "salted-caramel-line",
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: 140,
		Size:      model.SizeMedium,
		Container: model.ContainerCup,
	}
	require.NoError(t, testDB.Create(cartItem).Error)

	_, err = productService.DeleteProduct(product.ID)
	require.NoError(t, err)

	var remaining int64
	testDB.Model(&model.CartItem{}).Where("product_id = ?", product.ID).Count(&remaining)
	assert.Zero(t, remaining)

	_, err = productService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
