package repository

import (
	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"gorm.io/gorm"
)

type ToppingRepository interface {
	Create(topping *model.Topping) error
	FindAll() ([]model.Topping, error)
	FindByID(id uint) (*model.Topping, error)
	FindByIDs(ids []uint) ([]model.Topping, error)
	Update(topping *model.Topping) error
	Delete(id uint) error
	BulkCreate(toppings []model.Topping, batchSize int) error
}

type toppingRepository struct {
	db *gorm.DB
}

func NewToppingRepository(db *gorm.DB) ToppingRepository {
	return &toppingRepository{db: db}
}

func (r *toppingRepository) Create(topping *model.Topping) error {
	logger.Debug("Creating topping in database", map[string]interface{}{
		"name": topping.Name,
	})

	if err := r.db.Create(topping).Error; err != nil {
		logger.Error("Failed to create topping in database", err, map[string]interface{}{
			"name": topping.Name,
		})
		return err
	}
	return nil
}

func (r *toppingRepository) FindAll() ([]model.Topping, error) {
	var toppings []model.Topping
	if err := r.db.Order("id ASC").Find(&toppings).Error; err != nil {
		logger.Error("Failed to find toppings in database", err, nil)
		return nil, err
	}
	return toppings, nil
}

func (r *toppingRepository) FindByID(id uint) (*model.Topping, error) {
	var topping model.Topping
	if err := r.db.First(&topping, id).Error; err != nil {
		return nil, err
	}
	return &topping, nil
}

// FindByIDs returns the toppings that exist among ids. Unknown ids simply
// produce no row; callers treat them as ignored.
func (r *toppingRepository) FindByIDs(ids []uint) ([]model.Topping, error) {
	if len(ids) == 0 {
		return []model.Topping{}, nil
	}

	var toppings []model.Topping
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&toppings).Error; err != nil {
		logger.Error("Failed to find toppings by IDs in database", err, map[string]interface{}{
			"ids": ids,
		})
		return nil, err
	}
	return toppings, nil
}

func (r *toppingRepository) Update(topping *model.Topping) error {
	logger.Debug("Updating topping in database", map[string]interface{}{
		"topping_id": topping.ID,
	})

	if err := r.db.Save(topping).Error; err != nil {
		logger.Error("Failed to update topping in database", err, map[string]interface{}{
			"topping_id": topping.ID,
		})
		return err
	}
	return nil
}

func (r *toppingRepository) Delete(id uint) error {
	logger.Debug("Deleting topping from database", map[string]interface{}{
		"topping_id": id,
	})

	if err := r.db.Delete(&model.Topping{}, id).Error; err != nil {
		logger.Error("Failed to delete topping from database", err, map[string]interface{}{
			"topping_id": id,
		})
		return err
	}
	return nil
}

// BulkCreate inserts toppings in batches. Used by the seed tool.
func (r *toppingRepository) BulkCreate(toppings []model.Topping, batchSize int) error {
	if len(toppings) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(toppings, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create toppings in database", err, map[string]interface{}{
			"count": len(toppings),
		})
		return err
	}
	return nil
}
