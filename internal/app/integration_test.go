package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/creamloft/creamloft-backend/internal/app/controller"
	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/app/service"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	"github.com/creamloft/creamloft-backend/internal/session"
	"github.com/creamloft/creamloft-backend/pkg/payment/stripe"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	toppingRepo := repository.NewToppingRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)

	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo)
	toppingService := service.NewToppingService(toppingRepo)
	cartService := service.NewCartService(cartRepo, productRepo, toppingRepo)
	orderService := service.NewOrderService(testDB, orderRepo, cartRepo, addressRepo, nil)

	// The place-order path never talks to Stripe, so a dead-end client is
	// enough here.
	stripeClient, err := stripe.NewClient(stripe.Config{
		SecretKey: "sk_test_unused",
		BaseURL:   "http://127.0.0.1:0",
		Currency:  "inr",
	})
	require.NoError(t, err)

	checkoutService := service.NewCheckoutService(
		cartService,
		orderService,
		addressRepo,
		session.NewMemoryStore(),
		30*time.Minute,
		stripeClient,
	)

	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService, nil)
	toppingController := controller.NewToppingController(toppingService, nil)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	orderController := controller.NewOrderController(orderService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetProfile)
	}

	router.GET("/api/v1/products", productController.GetProducts)
	router.GET("/api/v1/products/:id", productController.GetProduct)
	router.GET("/api/v1/toppings", toppingController.GetToppings)

	cart := router.Group("/api/v1/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.POST("/add", cartController.AddToCart)
		cart.GET("/items", cartController.GetCartItems)
		cart.POST("/remove", cartController.RemoveFromCart)
		cart.DELETE("", cartController.ClearCart)
	}

	checkout := router.Group("/api/v1/checkout")
	checkout.Use(authMiddleware.Authenticate())
	{
		checkout.POST("/delivery", checkoutController.SetDeliveryOption)
		checkout.POST("/place-order", checkoutController.PlaceOrder)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.GET("", orderController.GetMyOrders)
		orders.GET("/:id", orderController.GetMyOrder)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireRole("admin"))
	{
		admin.POST("/products", productController.CreateProduct)
	}

	return &TestServer{
		Router: router,
		DB:     testDB,
	}
}

func (ts *TestServer) do(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, ts *TestServer, email string) string {
	w := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["access_token"].(string)
}

func TestCompleteOrderJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	token := registerUser(t, ts, "scoop@example.com")

	product := &model.Product{
		Name:          "Madagascar Vanilla",
		Description:   "Single-origin vanilla bean",
		Price:         120,
		Category:      model.CategoryClassic,
		StockQuantity: 10,
	}
	require.NoError(t, ts.DB.Create(product).Error)

	topping := &model.Topping{
		Name:  "Roasted Almonds",
		Price: 15,
	}
	require.NoError(t, ts.DB.Create(topping).Error)

	// Browse the catalog
	w := ts.do("GET", "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var productsResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &productsResp))
	assert.Len(t, productsResp["products"], 1)

	// Add two medium cups with almonds: (120 + 20 + 15) * 2
	w = ts.do("POST", "/api/v1/cart/add", token, map[string]interface{}{
		"product_id":  product.ID,
		"quantity":    2,
		"size":        "medium",
		"container":   "cup",
		"topping_ids": []uint{topping.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/v1/cart/items", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	assert.Len(t, cartResp["items"], 1)
	assert.InDelta(t, 310.0, cartResp["total"].(float64), 0.001)

	// Pickup, then place the order
	w = ts.do("POST", "/api/v1/checkout/delivery", token, map[string]interface{}{
		"option": "pickup",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do("POST", "/api/v1/checkout/place-order", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var orderResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orderResp))
	order := orderResp["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])
	assert.InDelta(t, 310.0, order["total_amount"].(float64), 0.001)

	// History shows the order
	w = ts.do("GET", "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var ordersResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ordersResp))
	assert.Len(t, ordersResp["orders"], 1)

	// Cart emptied, stock decremented
	w = ts.do("GET", "/api/v1/cart/items", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	assert.Len(t, cartResp["items"], 0)

	var updatedProduct model.Product
	require.NoError(t, ts.DB.First(&updatedProduct, product.ID).Error)
	assert.Equal(t, 8, updatedProduct.StockQuantity)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)

	token := registerUser(t, ts, "auth@example.com")

	w := ts.do("POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "auth@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var meResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meResp))
	user := meResp["user"].(map[string]interface{})
	assert.Equal(t, "auth@example.com", user["email"])
	assert.Equal(t, "Test User", user["name"])
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/cart/items",
		"/api/v1/orders",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			w := ts.do("GET", route, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminCatalogAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	customerToken := registerUser(t, ts, "customer@example.com")

	payload := map[string]interface{}{
		"name":           "Pistachio Swirl",
		"price":          140,
		"category":       "premium",
		"stock_quantity": 5,
	}

	// Customers cannot touch the catalog
	w := ts.do("POST", "/api/v1/admin/products", customerToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Promote a user to admin, then log in again for an admin token
	registerUser(t, ts, "admin@example.com")
	require.NoError(t, ts.DB.Model(&model.User{}).
		Where("email = ?", "admin@example.com").
		Update("role", model.RoleAdmin).Error)

	w = ts.do("POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	adminToken := loginResp["access_token"].(string)

	w = ts.do("POST", "/api/v1/admin/products", adminToken, payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	created := createResp["product"].(map[string]interface{})
	assert.Equal(t, "Pistachio Swirl", created["name"])
}
