package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/creamloft/creamloft-backend/config"
	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports the catalog from an xlsx workbook with a Products sheet and an
// optional Toppings sheet.
//
// Products columns: name, description, price, category, stock_quantity,
// image_url, allergens (comma separated).
// Toppings columns: name, description, price, image_url.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	products, skippedProducts, err := readProducts(f)
	if err != nil {
		log.Fatal("Failed to read products:", err)
	}
	toppings, skippedToppings, err := readToppings(f)
	if err != nil {
		log.Fatal("Failed to read toppings:", err)
	}

	fmt.Printf("Products to import: %d (skipped %d)\n", len(products), skippedProducts)
	fmt.Printf("Toppings to import: %d (skipped %d)\n", len(toppings), skippedToppings)

	if len(products) == 0 && len(toppings) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	const batchSize = 500

	productRepo := repository.NewProductRepository(db.GetDB())
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	toppingRepo := repository.NewToppingRepository(db.GetDB())
	if err := toppingRepo.BulkCreate(toppings, batchSize); err != nil {
		log.Fatal("Failed to bulk create toppings:", err)
	}

	fmt.Println("Import completed successfully!")
}

func readProducts(f *excelize.File) ([]model.Product, int, error) {
	rows, err := f.GetRows("Products")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read Products sheet: %w", err)
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		description := strings.TrimSpace(cell(row, 1))
		price, errPrice := strconv.ParseFloat(strings.TrimSpace(cell(row, 2)), 64)
		category := strings.TrimSpace(cell(row, 3))
		stock, _ := strconv.Atoi(strings.TrimSpace(cell(row, 4)))
		imageURL := strings.TrimSpace(cell(row, 5))
		allergens := parseAllergens(cell(row, 6))

		if name == "" || errPrice != nil || price <= 0 {
			skipped++
			continue
		}
		if !model.IsValidProductCategory(category) {
			skipped++
			continue
		}
		if seen[name] {
			skipped++
			continue
		}
		seen[name] = true

		products = append(products, model.Product{
			Name:          name,
			Description:   description,
			Price:         price,
			Category:      model.ProductCategory(category),
			StockQuantity: stock,
			ImageURL:      imageURL,
			Allergens:     allergens,
		})
	}

	return products, skipped, nil
}

func readToppings(f *excelize.File) ([]model.Topping, int, error) {
	rows, err := f.GetRows("Toppings")
	if err != nil {
		// The Toppings sheet is optional
		return nil, 0, nil
	}

	var toppings []model.Topping
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		description := strings.TrimSpace(cell(row, 1))
		price, errPrice := strconv.ParseFloat(strings.TrimSpace(cell(row, 2)), 64)
		imageURL := strings.TrimSpace(cell(row, 3))

		if name == "" || errPrice != nil || price < 0 {
			skipped++
			continue
		}
		if seen[name] {
			skipped++
			continue
		}
		seen[name] = true

		toppings = append(toppings, model.Topping{
			Name:        name,
			Description: description,
			Price:       price,
			ImageURL:    imageURL,
		})
	}

	return toppings, skipped, nil
}

func parseAllergens(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// cell reads a column that may be absent because trailing empty cells are
// trimmed from xlsx rows.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
