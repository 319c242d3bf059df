package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/creamloft/creamloft-backend/internal/app/service"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	"github.com/creamloft/creamloft-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type ToppingController struct {
	toppingService service.ToppingService
	storage        *storage.S3Storage
}

func NewToppingController(toppingService service.ToppingService, s3 *storage.S3Storage) *ToppingController {
	return &ToppingController{
		toppingService: toppingService,
		storage:        s3,
	}
}

type CreateToppingRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	ImageURL    string  `json:"image_url"`
}

type UpdateToppingRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"image_url"`
}

// GetToppings lists every available topping
// GET /api/v1/toppings
func (ctrl *ToppingController) GetToppings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	toppings, err := ctrl.toppingService.GetToppings()
	if err != nil {
		log.Error("Failed to fetch toppings", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch toppings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"toppings": toppings,
		"count":    len(toppings),
	})
}

// CreateTopping adds a topping
// POST /api/v1/admin/toppings
func (ctrl *ToppingController) CreateTopping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	topping, err := ctrl.toppingService.CreateTopping(service.CreateToppingInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidToppingData) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid topping data",
			})
			return
		}
		log.Error("Failed to create topping", err, map[string]interface{}{
			"name": req.Name,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create topping",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"topping": topping,
	})
}

// UpdateTopping edits a topping
// PUT /api/v1/admin/toppings/:id
func (ctrl *ToppingController) UpdateTopping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var oldImageURL string
	if req.ImageURL != nil {
		existing, err := ctrl.toppingService.GetToppingByID(id)
		if err == nil {
			oldImageURL = existing.ImageURL
		}
	}

	topping, err := ctrl.toppingService.UpdateTopping(id, service.UpdateToppingInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrToppingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Topping not found",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidToppingData) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid topping data",
			})
			return
		}
		log.Error("Failed to update topping", err, map[string]interface{}{
			"topping_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update topping",
		})
		return
	}

	ctrl.releaseToppingImage(c, oldImageURL, topping.ImageURL)

	c.JSON(http.StatusOK, gin.H{
		"topping": topping,
	})
}

// DeleteTopping removes a topping and releases its image
// DELETE /api/v1/admin/toppings/:id
func (ctrl *ToppingController) DeleteTopping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	topping, err := ctrl.toppingService.DeleteTopping(id)
	if err != nil {
		if errors.Is(err, service.ErrToppingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Topping not found",
			})
			return
		}
		log.Error("Failed to delete topping", err, map[string]interface{}{
			"topping_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete topping",
		})
		return
	}

	ctrl.releaseToppingImage(c, topping.ImageURL, "")

	c.JSON(http.StatusOK, gin.H{
		"message": "Topping deleted successfully",
	})
}

func (ctrl *ToppingController) releaseToppingImage(c *gin.Context, oldURL, newURL string) {
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
