package service

import (
	"errors"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidProductData = errors.New("invalid product data")
	ErrInvalidCategory    = errors.New("invalid product category")
)

// CreateProductInput carries the fields an admin supplies for a new product.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         float64
	Category      model.ProductCategory
	StockQuantity int
	ImageURL      string
	Allergens     []string
}

// UpdateProductInput carries the mutable fields of a product. Nil pointers
// leave the current value untouched.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *float64
	Category      *model.ProductCategory
	StockQuantity *int
	ImageURL      *string
	Allergens     []string
}

type ProductService interface {
	GetProducts(category string) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(input CreateProductInput) (*model.Product, error)
	UpdateProduct(id uint, input UpdateProductInput) (*model.Product, error)
	DeleteProduct(id uint) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetProducts(category string) ([]model.Product, error) {
	logger.Debug("Fetching products", map[string]interface{}{
		"category": category,
	})

	if category != "" && !model.IsValidProductCategory(category) {
		logger.Warn("Invalid product category filter", map[string]interface{}{
			"category": category,
		})
		return nil, ErrInvalidCategory
	}

	products, err := s.productRepo.FindAll(category)
	if err != nil {
		logger.Error("Failed to fetch products", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}

	logger.Info("Products fetched successfully", map[string]interface{}{
		"category": category,
		"count":    len(products),
	})
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":     input.Name,
		"category": input.Category,
	})

	if input.Name == "" || input.Price <= 0 {
		return nil, ErrInvalidProductData
	}
	if input.StockQuantity < 0 {
		return nil, ErrInvalidProductData
	}
	if !model.IsValidProductCategory(string(input.Category)) {
		return nil, ErrInvalidCategory
	}

	product := &model.Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		Category:      input.Category,
		StockQuantity: input.StockQuantity,
		ImageURL:      input.ImageURL,
		Allergens:     input.Allergens,
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *productService) UpdateProduct(id uint, input UpdateProductInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for update", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrInvalidProductData
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, ErrInvalidProductData
		}
		product.Price = *input.Price
	}
	if input.Category != nil {
		if !model.IsValidProductCategory(string(*input.Category)) {
			return nil, ErrInvalidCategory
		}
		product.Category = *input.Category
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, ErrInvalidProductData
		}
		product.StockQuantity = *input.StockQuantity
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Allergens != nil {
		product.Allergens = input.Allergens
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

// DeleteProduct removes the product row. Historical order items keep their
// own name and price snapshots and survive via SET NULL on the foreign key.
// The deleted product is returned so callers can release its image.
func (s *productService) DeleteProduct(id uint) (*model.Product, error) {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for deletion", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	if err := s.productRepo.Delete(id); err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})
	return product, nil
}
