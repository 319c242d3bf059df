package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/creamloft/creamloft-backend/config"
	"github.com/creamloft/creamloft-backend/internal/app/controller"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/app/service"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	"github.com/creamloft/creamloft-backend/internal/router"
	"github.com/creamloft/creamloft-backend/internal/scheduler"
	"github.com/creamloft/creamloft-backend/internal/session"
	"github.com/creamloft/creamloft-backend/internal/storage"
	"github.com/creamloft/creamloft-backend/internal/websocket"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"github.com/creamloft/creamloft-backend/pkg/payment/stripe"
	"github.com/creamloft/creamloft-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting CREAMLOFT Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Checkout sessions live in Redis so they survive restarts. When Redis
	// is unreachable the server still comes up with in-process sessions.
	var sessionStore session.Store
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, using in-memory checkout sessions", map[string]interface{}{
			"error": err.Error(),
		})
		sessionStore = session.NewMemoryStore()
	} else {
		sessionStore = session.NewRedisStore(redis.GetClient())
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	stripeClient, err := stripe.NewClient(stripe.Config{
		SecretKey:      cfg.Stripe.SecretKey,
		PublishableKey: cfg.Stripe.PublishableKey,
		BaseURL:        cfg.Stripe.BaseURL,
		Currency:       cfg.Stripe.Currency,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Stripe client", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	hub := websocket.NewHub()
	go hub.Run()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	toppingRepo := repository.NewToppingRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	toppingService := service.NewToppingService(toppingRepo)
	cartService := service.NewCartService(cartRepo, productRepo, toppingRepo)
	orderService := service.NewOrderService(db.GetDB(), orderRepo, cartRepo, addressRepo, hub)
	addressService := service.NewAddressService(addressRepo)
	checkoutService := service.NewCheckoutService(
		cartService,
		orderService,
		addressRepo,
		sessionStore,
		cfg.Checkout.SessionTTL,
		stripeClient,
	)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService, s3Storage)
	toppingController := controller.NewToppingController(toppingService, s3Storage)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	orderController := controller.NewOrderController(orderService)
	adminOrderController := controller.NewAdminOrderController(orderService, hub)
	addressController := controller.NewAddressController(addressService)
	uploadController := controller.NewUploadController(s3Storage)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	sweeper := scheduler.NewCartSweeper(cartRepo, cfg.Checkout.SweepCron, cfg.Checkout.CartMaxAge)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start cart sweeper", err)
	}
	defer sweeper.Stop()

	r := router.NewRouter(
		authController,
		productController,
		toppingController,
		cartController,
		checkoutController,
		orderController,
		adminOrderController,
		addressController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
