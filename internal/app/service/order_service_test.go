package service

import (
	"sync"
	"testing"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderServiceFixture struct {
	orderService OrderService
	cartService  CartService
	user         *model.User
	product      *model.Product
	topping      *model.Topping
	db           *gorm.DB
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	toppingRepo := repository.NewToppingRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)

	cartService := NewCartService(cartRepo, productRepo, toppingRepo)
	orderService := NewOrderService(testDB, orderRepo, cartRepo, addressRepo, nil)

	user := &model.User{
		Email:        "orders@example.com",
		PasswordHash: "hash",
		Name:         "Order Tester",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Vanilla Bean",
		Price:         100,
		Category:      model.CategoryClassic,
		StockQuantity: 5,
	}
	testDB.Create(product)

	topping := &model.Topping{
		Name:  "Chocolate Chips",
		Price: 15,
	}
	testDB.Create(topping)

	return &orderServiceFixture{
		orderService: orderService,
		cartService:  cartService,
		user:         user,
		product:      product,
		topping:      topping,
		db:           testDB,
	}
}

func TestOrderService_CreateOrderFromCart_Success(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 2, model.Customization{
		Size:       model.SizeMedium,
		Container:  model.ContainerCup,
		ToppingIDs: []uint{f.topping.ID},
	})
	require.NoError(t, err)

	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 2, order.OrderItems[0].Quantity)
	assert.Equal(t, 135.0, order.OrderItems[0].Price)
	assert.Equal(t, "Vanilla Bean", order.OrderItems[0].ProductName)
	assert.Equal(t, 270.0, order.TotalAmount)

	// Stock decremented from 5 to 3
	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 3, product.StockQuantity)

	// Cart cleared
	view, err := f.cartService.ListItems(f.user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 0)
}

func TestOrderService_CreateOrderFromCart_EmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_CreateOrderFromCart_DropsUnderstockedLine(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 2, model.Customization{})
	require.NoError(t, err)

	// Stock shrinks after the item entered the cart
	f.db.Model(f.product).Update("stock_quantity", 1)

	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	assert.Len(t, order.OrderItems, 0)
	assert.Equal(t, 0.0, order.TotalAmount)

	// Stock untouched, never negative
	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 1, product.StockQuantity)
}

func TestOrderService_CreateOrderFromCart_PartialDrop(t *testing.T) {
	f := setupOrderServiceTest(t)

	scarce := &model.Product{
		Name:          "Mango Sorbet",
		Price:         130,
		Category:      model.CategorySorbet,
		StockQuantity: 1,
	}
	f.db.Create(scarce)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 2, model.Customization{})
	require.NoError(t, err)
	_, err = f.cartService.AddItem(f.user.ID, scarce.ID, 1, model.Customization{})
	require.NoError(t, err)

	// Scarce product sells out between add and checkout
	f.db.Model(scarce).Update("stock_quantity", 0)

	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "Vanilla Bean", order.OrderItems[0].ProductName)
	assert.Equal(t, 200.0, order.TotalAmount)
}

func TestOrderService_CreateOrderFromCart_FrozenPrice(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)

	// Catalog price change after add must not leak into the order
	f.db.Model(f.product).Update("price", 999)

	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 100.0, order.OrderItems[0].Price)
	assert.Equal(t, 100.0, order.TotalAmount)
}

func TestOrderService_CreateOrderFromCart_PaymentConfirmed(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)

	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{
		PaymentProvider:  "stripe",
		PaymentIntentID:  "pi_test_123",
		PaymentConfirmed: true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, "pi_test_123", order.PaymentIntentID)
}

func TestOrderService_CreateOrderFromCart_WithAddress(t *testing.T) {
	f := setupOrderServiceTest(t)

	address := &model.Address{
		UserID:    f.user.ID,
		Recipient: "Order Tester",
		Street:    "12 MG Road",
		City:      "Bengaluru",
	}
	f.db.Create(address)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)

	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{
		AddressID: &address.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, order.AddressID)
	assert.Equal(t, address.ID, *order.AddressID)
}

func TestOrderService_CreateOrderFromCart_ForeignAddressRejected(t *testing.T) {
	f := setupOrderServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleUser}
	f.db.Create(other)
	address := &model.Address{UserID: other.ID, Recipient: "Other", Street: "1 Elsewhere", City: "Mumbai"}
	f.db.Create(address)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)

	_, err = f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{AddressID: &address.ID})
	assert.ErrorIs(t, err, ErrAddressNotOwned)
}

func TestOrderService_GetOrderByID_Ownership(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	fetched, err := f.orderService.GetOrderByID(f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)

	other := &model.User{Email: "intruder@example.com", PasswordHash: "hash", Name: "Intruder", Role: model.RoleUser}
	f.db.Create(other)

	_, err = f.orderService.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_UpdateOrderStatus_ValidPath(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	for _, status := range []model.OrderStatus{
		model.OrderStatusProcessing,
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusDelivered,
	} {
		updated, err := f.orderService.UpdateOrderStatus(order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrderService_UpdateOrderStatus_RejectsSkips(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatus("shipped"))
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderService_UpdateOrderStatus_TerminalIsFrozen(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateOrderStatus_CancellableFromAnyNonTerminal(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusPreparing)
	require.NoError(t, err)

	updated, err := f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)
}

func TestOrderService_OrderSurvivesProductDeletion(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartService.AddItem(f.user.ID, f.product.ID, 1, model.Customization{})
	require.NoError(t, err)
	order, err := f.orderService.CreateOrderFromCart(f.user.ID, PlaceOrderInput{})
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&model.Product{}, f.product.ID).Error)

	fetched, err := f.orderService.GetOrderByID(f.user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.OrderItems, 1)
	assert.Equal(t, "Vanilla Bean", fetched.OrderItems[0].ProductName)
	assert.Equal(t, 100.0, fetched.OrderItems[0].Price)
}

func TestOrderService_CreateOrderFromCart_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := setupOrderServiceTest(t)

	// In-memory sqlite hands each pooled connection its own database, so
	// pin the pool to one connection before running goroutines against it.
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", f.product.ID).
		Update("stock_quantity", 1).Error)

	second := &model.User{
		Email:        "orders2@example.com",
		PasswordHash: "hash",
		Name:         "Second Buyer",
		Role:         model.RoleUser,
	}
	require.NoError(t, f.db.Create(second).Error)

	for _, userID := range []uint{f.user.ID, second.ID} {
		_, err := f.cartService.AddItem(userID, f.product.ID, 1, model.Customization{})
		require.NoError(t, err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		orders []*model.Order
	)
	for _, userID := range []uint{f.user.ID, second.ID} {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			order, err := f.orderService.CreateOrderFromCart(uid, PlaceOrderInput{})
			assert.NoError(t, err)
			if order != nil {
				mu.Lock()
				orders = append(orders, order)
				mu.Unlock()
			}
		}(userID)
	}
	wg.Wait()

	require.Len(t, orders, 2)
	soldQuantity := 0
	for _, order := range orders {
		for _, item := range order.OrderItems {
			soldQuantity += item.Quantity
		}
	}
	assert.Equal(t, 1, soldQuantity)

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 0, product.StockQuantity)
}
