package service

import (
	"errors"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrToppingNotFound    = errors.New("topping not found")
	ErrInvalidToppingData = errors.New("invalid topping data")
)

// CreateToppingInput carries the fields an admin supplies for a new topping.
type CreateToppingInput struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

// UpdateToppingInput carries the mutable fields of a topping. Nil pointers
// leave the current value untouched.
type UpdateToppingInput struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
}

type ToppingService interface {
	GetToppings() ([]model.Topping, error)
	GetToppingByID(id uint) (*model.Topping, error)
	CreateTopping(input CreateToppingInput) (*model.Topping, error)
	UpdateTopping(id uint, input UpdateToppingInput) (*model.Topping, error)
	DeleteTopping(id uint) (*model.Topping, error)
}

type toppingService struct {
	toppingRepo repository.ToppingRepository
}

func NewToppingService(toppingRepo repository.ToppingRepository) ToppingService {
	return &toppingService{toppingRepo: toppingRepo}
}

func (s *toppingService) GetToppings() ([]model.Topping, error) {
	toppings, err := s.toppingRepo.FindAll()
	if err != nil {
		logger.Error("Failed to fetch toppings", err, nil)
		return nil, err
	}
	return toppings, nil
}

func (s *toppingService) GetToppingByID(id uint) (*model.Topping, error) {
	topping, err := s.toppingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Topping not found", map[string]interface{}{
				"topping_id": id,
			})
			return nil, ErrToppingNotFound
		}
		logger.Error("Failed to fetch topping", err, map[string]interface{}{
			"topping_id": id,
		})
		return nil, err
	}
	return topping, nil
}

func (s *toppingService) CreateTopping(input CreateToppingInput) (*model.Topping, error) {
	logger.Info("Creating topping", map[string]interface{}{
		"name": input.Name,
	})

	if input.Name == "" || input.Price < 0 {
		return nil, ErrInvalidToppingData
	}

	topping := &model.Topping{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
	}

	if err := s.toppingRepo.Create(topping); err != nil {
		logger.Error("Failed to create topping", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Topping created successfully", map[string]interface{}{
		"topping_id": topping.ID,
		"name":       topping.Name,
	})
	return topping, nil
}

func (s *toppingService) UpdateTopping(id uint, input UpdateToppingInput) (*model.Topping, error) {
	topping, err := s.toppingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrToppingNotFound
		}
		logger.Error("Failed to fetch topping for update", err, map[string]interface{}{
			"topping_id": id,
		})
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrInvalidToppingData
		}
		topping.Name = *input.Name
	}
	if input.Description != nil {
		topping.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, ErrInvalidToppingData
		}
		topping.Price = *input.Price
	}
	if input.ImageURL != nil {
		topping.ImageURL = *input.ImageURL
	}

	if err := s.toppingRepo.Update(topping); err != nil {
		logger.Error("Failed to update topping", err, map[string]interface{}{
			"topping_id": id,
		})
		return nil, err
	}

	logger.Info("Topping updated successfully", map[string]interface{}{
		"topping_id": topping.ID,
	})
	return topping, nil
}

// DeleteTopping removes the topping row. Order items reference toppings
// only through their customization snapshot, so history stays intact.
func (s *toppingService) DeleteTopping(id uint) (*model.Topping, error) {
	topping, err := s.toppingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrToppingNotFound
		}
		logger.Error("Failed to fetch topping for deletion", err, map[string]interface{}{
			"topping_id": id,
		})
		return nil, err
	}

	if err := s.toppingRepo.Delete(id); err != nil {
		logger.Error("Failed to delete topping", err, map[string]interface{}{
			"topping_id": id,
		})
		return nil, err
	}

	logger.Info("Topping deleted successfully", map[string]interface{}{
		"topping_id": id,
	})
	return topping, nil
}
