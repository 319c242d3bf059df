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

func setupCartServiceTest(t *testing.T) (CartService, *model.User, *model.Product, *model.Topping, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	toppingRepo := repository.NewToppingRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo, toppingRepo)

	// Create test user
	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	// Create test product
	product := &model.Product{
		Name:          "Vanilla Bean",
		Price:         100,
		Category:      model.CategoryClassic,
		StockQuantity: 10,
	}
	testDB.Create(product)

	// Create test topping
	topping := &model.Topping{
		Name:  "Chocolate Chips",
		Price: 15,
	}
	testDB.Create(topping)

	return cartService, user, product, topping, testDB
}

func TestCartService_AddItem_Success(t *testing.T) {
	cartService, user, product, topping, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, 2, model.Customization{
		Size:       model.SizeMedium,
		Container:  model.ContainerCup,
		ToppingIDs: []uint{topping.ID},
	})
	require.NoError(t, err)

	// 100 base + 20 medium surcharge + 15 topping
	assert.Equal(t, 135.0, item.UnitPrice)
	assert.Equal(t, 2, item.Quantity)

	view, err := cartService.ListItems(user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 270.0, view.Total)
}

func TestCartService_AddItem_MergesSameCustomization(t *testing.T) {
	cartService, user, product, topping, _ := setupCartServiceTest(t)

	customization := model.Customization{
		Size:       model.SizeSmall,
		Container:  model.ContainerCone,
		ToppingIDs: []uint{topping.ID},
	}

	_, err := cartService.AddItem(user.ID, product.ID, 1, customization)
	require.NoError(t, err)

	merged, err := cartService.AddItem(user.ID, product.ID, 2, customization)
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Quantity)

	view, err := cartService.ListItems(user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCartService_AddItem_ToppingOrderIrrelevant(t *testing.T) {
	cartService, user, product, topping, testDB := setupCartServiceTest(t)

	second := &model.Topping{Name: "Roasted Almonds", Price: 25}
	testDB.Create(second)

	_, err := cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size:       model.SizeSmall,
		Container:  model.ContainerCone,
		ToppingIDs: []uint{topping.ID, second.ID},
	})
	require.NoError(t, err)

	merged, err := cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size:       model.SizeSmall,
		Container:  model.ContainerCone,
		ToppingIDs: []uint{second.ID, topping.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Quantity)
}

func TestCartService_AddItem_DifferentCustomizationSplits(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size: model.SizeSmall, Container: model.ContainerCone,
	})
	require.NoError(t, err)

	_, err = cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size: model.SizeLarge, Container: model.ContainerCup,
	})
	require.NoError(t, err)

	view, err := cartService.ListItems(user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestCartService_AddItem_FrozenPriceSurvivesCatalogChange(t *testing.T) {
	cartService, user, product, _, testDB := setupCartServiceTest(t)

	customization := model.Customization{Size: model.SizeSmall, Container: model.ContainerCone}

	first, err := cartService.AddItem(user.ID, product.ID, 1, customization)
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.UnitPrice)

	// Catalog price changes after the line exists
	testDB.Model(product).Update("price", 500)

	merged, err := cartService.AddItem(user.ID, product.ID, 1, customization)
	require.NoError(t, err)
	assert.Equal(t, 100.0, merged.UnitPrice)
	assert.Equal(t, 2, merged.Quantity)
}

func TestCartService_AddItem_UnknownToppingIgnored(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	item, err := cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size:       model.SizeSmall,
		Container:  model.ContainerCone,
		ToppingIDs: []uint{9999},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, item.UnitPrice)
}

func TestCartService_AddItem_InsufficientStock(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, 11, model.Customization{})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	cartService, user, _, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, 9999, 1, model.Customization{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, 0, model.Customization{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = cartService.AddItem(user.ID, product.ID, -1, model.Customization{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size: model.SizeSmall, Container: model.ContainerCone,
	})
	require.NoError(t, err)

	err = cartService.RemoveItem(user.ID, product.ID)
	require.NoError(t, err)

	view, err := cartService.ListItems(user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 0)
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	err := cartService.RemoveItem(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveItem_OnlyOneVariantPerCall(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size: model.SizeSmall, Container: model.ContainerCone,
	})
	require.NoError(t, err)
	_, err = cartService.AddItem(user.ID, product.ID, 1, model.Customization{
		Size: model.SizeLarge, Container: model.ContainerCup,
	})
	require.NoError(t, err)

	err = cartService.RemoveItem(user.ID, product.ID)
	require.NoError(t, err)

	view, err := cartService.ListItems(user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCartService_Clear(t *testing.T) {
	cartService, user, product, _, _ := setupCartServiceTest(t)

	_, err := cartService.AddItem(user.ID, product.ID, 2, model.Customization{})
	require.NoError(t, err)

	err = cartService.Clear(user.ID)
	require.NoError(t, err)

	view, err := cartService.ListItems(user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 0)
	assert.Equal(t, 0.0, view.Total)
}
