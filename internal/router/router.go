package router

import (
	"github.com/creamloft/creamloft-backend/config"
	"github.com/creamloft/creamloft-backend/internal/app/controller"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController       *controller.AuthController
	productController    *controller.ProductController
	toppingController    *controller.ToppingController
	cartController       *controller.CartController
	checkoutController   *controller.CheckoutController
	orderController      *controller.OrderController
	adminOrderController *controller.AdminOrderController
	addressController    *controller.AddressController
	uploadController     *controller.UploadController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	toppingController *controller.ToppingController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	adminOrderController *controller.AdminOrderController,
	addressController *controller.AddressController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		productController:    productController,
		toppingController:    toppingController,
		cartController:       cartController,
		checkoutController:   checkoutController,
		orderController:      orderController,
		adminOrderController: adminOrderController,
		addressController:    addressController,
		uploadController:     uploadController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "CREAMLOFT API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		v1.GET("/toppings", r.toppingController.GetToppings)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.POST("/add", r.cartController.AddToCart)
			cart.GET("/items", r.cartController.GetCartItems)
			cart.POST("/remove", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.POST("/delivery", r.checkoutController.SetDeliveryOption)
			checkout.GET("/session", r.checkoutController.GetSession)
			checkout.POST("/place-order", r.checkoutController.PlaceOrder)
		}

		payment := v1.Group("/payment")
		payment.Use(r.authMiddleware.Authenticate())
		{
			payment.POST("/intent", r.checkoutController.CreatePaymentIntent)
			payment.POST("/success", r.checkoutController.ConfirmPayment)
			payment.POST("/cancel", r.checkoutController.CancelPayment)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetMyOrder)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.GetAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.POST("/toppings", r.toppingController.CreateTopping)
			admin.PUT("/toppings/:id", r.toppingController.UpdateTopping)
			admin.DELETE("/toppings/:id", r.toppingController.DeleteTopping)

			admin.GET("/orders", r.adminOrderController.GetOrders)
			admin.GET("/orders/export", r.adminOrderController.ExportOrders)
			admin.GET("/orders/feed", r.adminOrderController.OrderFeed)
			admin.GET("/orders/:id", r.adminOrderController.GetOrder)
			admin.PUT("/orders/:id/status", r.adminOrderController.UpdateOrderStatus)

			admin.POST("/upload/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
