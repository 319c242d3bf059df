package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/service"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	"github.com/creamloft/creamloft-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
	storage        *storage.S3Storage
}

func NewProductController(productService service.ProductService, s3 *storage.S3Storage) *ProductController {
	return &ProductController{
		productService: productService,
		storage:        s3,
	}
}

type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	Category      string   `json:"category" binding:"required"`
	StockQuantity int      `json:"stock_quantity" binding:"gte=0"`
	ImageURL      string   `json:"image_url"`
	Allergens     []string `json:"allergens"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Category      *string  `json:"category"`
	StockQuantity *int     `json:"stock_quantity"`
	ImageURL      *string  `json:"image_url"`
	Allergens     []string `json:"allergens"`
}

// GetProducts lists the catalog, optionally filtered by category
// GET /api/v1/products?category=sorbet
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	category := c.Query("category")
	products, err := ctrl.productService.GetProducts(category)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown product category",
			})
			return
		}
		log.Error("Failed to fetch products", err, map[string]interface{}{
			"category": category,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct adds a catalog entry
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := ctrl.productService.CreateProduct(service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      model.ProductCategory(req.Category),
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		Allergens:     req.Allergens,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidProductData) || errors.Is(err, service.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid product data",
			})
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct edits a catalog entry. A replaced image releases the old
// object from storage.
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var oldImageURL string
	if req.ImageURL != nil {
		existing, err := ctrl.productService.GetProductByID(id)
		if err == nil {
			oldImageURL = existing.ImageURL
		}
	}

	var category *model.ProductCategory
	if req.Category != nil {
		cat := model.ProductCategory(*req.Category)
		category = &cat
	}

	product, err := ctrl.productService.UpdateProduct(id, service.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      category,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		Allergens:     req.Allergens,
	})
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidProductData) || errors.Is(err, service.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid product data",
			})
			return
		}
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update product",
		})
		return
	}

	ctrl.releaseImage(c, oldImageURL, product.ImageURL)

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct removes a catalog entry and releases its image
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.DeleteProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete product",
		})
		return
	}

	ctrl.releaseImage(c, product.ImageURL, "")

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// releaseImage deletes the old object when it differs from the current
// one. Storage failures are logged, never surfaced to the admin.
func (ctrl *ProductController) releaseImage(c *gin.Context, oldURL, newURL string) {
	if ctrl.storage == nil || oldURL == "" || oldURL == newURL {
		return
	}
	log := middleware.GetLoggerFromContext(c)
	if err := ctrl.storage.DeleteByURL(context.Background(), oldURL); err != nil {
		log.Warn("Failed to release replaced image", map[string]interface{}{
			"image_url": oldURL,
			"error":     err.Error(),
		})
	}
}

// parseIDParam reads the :id path segment. Writes the 400 itself so
// callers just bail out on !ok.
func parseIDParam(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return uint(id), true
}
