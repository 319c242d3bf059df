package db

import (
	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"github.com/creamloft/creamloft-backend/pkg/util"
	"github.com/lib/pq"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.Topping{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedAdminUser(); err != nil {
		logger.Error("Failed to seed admin user", err)
		return err
	}

	if err := seedCatalog(); err != nil {
		logger.Error("Failed to seed catalog", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedAdminUser creates the built-in back-office account if it is missing.
func seedAdminUser() error {
	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Admin user already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	hash, err := util.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Name:         "Store Admin",
		Role:         model.RoleAdmin,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Admin user seeded successfully", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}

// seedCatalog loads a starter menu when the catalog tables are empty.
func seedCatalog() error {
	var count int64
	if err := DB.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Catalog already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding catalog data...")

	products := []model.Product{
		{Name: "Vanilla Bean", Description: "Madagascar vanilla, slow churned", Price: 100, Category: model.CategoryClassic, StockQuantity: 50, Allergens: pq.StringArray{"milk"}},
		{Name: "Dutch Chocolate", Description: "Dark cocoa with fudge ribbons", Price: 120, Category: model.CategoryClassic, StockQuantity: 50, Allergens: pq.StringArray{"milk", "soy"}},
		{Name: "Strawberry Swirl", Description: "Fresh strawberry puree swirl", Price: 110, Category: model.CategoryClassic, StockQuantity: 50, Allergens: pq.StringArray{"milk"}},
		{Name: "Salted Caramel", Description: "Burnt caramel with sea salt flakes", Price: 150, Category: model.CategoryPremium, StockQuantity: 40, Allergens: pq.StringArray{"milk"}},
		{Name: "Pistachio Praline", Description: "Roasted pistachio with praline crunch", Price: 160, Category: model.CategoryPremium, StockQuantity: 30, Allergens: pq.StringArray{"milk", "nuts"}},
		{Name: "Mango Sorbet", Description: "Alphonso mango, dairy free", Price: 130, Category: model.CategorySorbet, StockQuantity: 40},
		{Name: "Lemon Sorbet", Description: "Sicilian lemon, dairy free", Price: 120, Category: model.CategorySorbet, StockQuantity: 40},
		{Name: "Coconut Dream", Description: "Coconut cream base, fully plant based", Price: 140, Category: model.CategoryVegan, StockQuantity: 30, Allergens: pq.StringArray{"coconut"}},
	}

	for i := range products {
		if err := DB.Create(&products[i]).Error; err != nil {
			logger.Error("Failed to create product", err, map[string]interface{}{
				"product": products[i].Name,
			})
			return err
		}
	}

	toppings := []model.Topping{
		{Name: "Chocolate Chips", Description: "Dark chocolate morsels", Price: 15},
		{Name: "Rainbow Sprinkles", Description: "Classic sugar sprinkles", Price: 10},
		{Name: "Roasted Almonds", Description: "Slivered and toasted", Price: 25},
		{Name: "Whipped Cream", Description: "Fresh whipped daily", Price: 20},
		{Name: "Caramel Drizzle", Description: "House-made caramel sauce", Price: 15},
		{Name: "Fresh Berries", Description: "Seasonal berry mix", Price: 30},
	}

	for i := range toppings {
		if err := DB.Create(&toppings[i]).Error; err != nil {
			logger.Error("Failed to create topping", err, map[string]interface{}{
				"topping": toppings[i].Name,
			})
			return err
		}
	}

	logger.Info("Catalog seeded successfully", map[string]interface{}{
		"products": len(products),
		"toppings": len(toppings),
	})
	return nil
}
