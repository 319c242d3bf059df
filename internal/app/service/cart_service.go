package service

import (
	"errors"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// CartItemView is a cart line enriched with catalog display data.
type CartItemView struct {
	ID            uint                `json:"id"`
	ProductID     uint                `json:"product_id"`
	Name          string              `json:"name"`
	ImageURL      string              `json:"image_url"`
	Quantity      int                 `json:"quantity"`
	UnitPrice     float64             `json:"unit_price"`
	LineTotal     float64             `json:"line_total"`
	Customization model.Customization `json:"customization"`
	ToppingNames  []string            `json:"topping_names,omitempty"`
}

// CartView is the full cart as returned to the client.
type CartView struct {
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}

type CartService interface {
	AddItem(userID, productID uint, quantity int, customization model.Customization) (*model.CartItem, error)
	ListItems(userID uint) (*CartView, error)
	RemoveItem(userID, productID uint) error
	Clear(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	toppingRepo repository.ToppingRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	toppingRepo repository.ToppingRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		toppingRepo: toppingRepo,
	}
}

// AddItem prices the customized product and merges it into the cart.
// Lines with the same product and customization merge quantities; the
// unit price frozen at the first add wins over later catalog changes.
func (s *cartService) AddItem(userID, productID uint, quantity int, customization model.Customization) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	if product.StockQuantity < quantity {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  quantity,
			"available":  product.StockQuantity,
		})
		return nil, ErrInsufficientStock
	}

	customization = customization.Normalize()

	// Unknown topping ids simply produce no rows and no surcharge.
	toppings, err := s.toppingRepo.FindByIDs(customization.ToppingIDs)
	if err != nil {
		logger.Error("Failed to fetch toppings for pricing", err, map[string]interface{}{
			"topping_ids": customization.ToppingIDs,
		})
		return nil, err
	}

	itemKey := customization.ItemKey(productID)

	existing, err := s.cartRepo.FindByUserAndKey(userID, itemKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	if existing != nil {
		logger.Debug("Merging into existing cart item", map[string]interface{}{
			"cart_item_id": existing.ID,
			"old_qty":      existing.Quantity,
			"added_qty":    quantity,
		})
		existing.Quantity += quantity
		if err := s.cartRepo.Update(existing); err != nil {
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": existing.ID,
			})
			return nil, err
		}
		return existing, nil
	}

	cartItem := &model.CartItem{
		UserID:     userID,
		ItemKey:    itemKey,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  PriceItem(product, customization, toppings),
		Size:       customization.Size,
		Container:  customization.Container,
		ToppingIDs: model.EncodeToppingIDs(customization.ToppingIDs),
		Notes:      customization.Notes,
	}

	if err := s.cartRepo.Create(cartItem); err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"unit_price":   cartItem.UnitPrice,
	})
	return cartItem, nil
}

// ListItems rebuilds the display view from the catalog on every call.
// Prices come from the stored lines, names from the live catalog.
func (s *cartService) ListItems(userID uint) (*CartView, error) {
	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	view := &CartView{Items: make([]CartItemView, 0, len(cartItems))}
	for _, item := range cartItems {
		customization := item.Customization()

		var toppingNames []string
		if len(customization.ToppingIDs) > 0 {
			toppings, err := s.toppingRepo.FindByIDs(customization.ToppingIDs)
			if err != nil {
				logger.Error("Failed to fetch toppings for cart view", err, map[string]interface{}{
					"cart_item_id": item.ID,
				})
				return nil, err
			}
			for _, topping := range toppings {
				toppingNames = append(toppingNames, topping.Name)
			}
		}

		lineTotal := item.UnitPrice * float64(item.Quantity)
		view.Items = append(view.Items, CartItemView{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Name:          item.Product.Name,
			ImageURL:      item.Product.ImageURL,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			LineTotal:     lineTotal,
			Customization: customization,
			ToppingNames:  toppingNames,
		})
		view.Total += lineTotal
	}

	logger.Debug("Cart view built", map[string]interface{}{
		"user_id": userID,
		"count":   len(view.Items),
		"total":   view.Total,
	})
	return view, nil
}

// RemoveItem drops the oldest cart line for the product. When several
// customized variants of the same product coexist, only one goes per call.
func (s *cartService) RemoveItem(userID, productID uint) error {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	item, err := s.cartRepo.FindFirstByUserAndProduct(userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found for removal", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item for removal", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}

	if err := s.cartRepo.Delete(item.ID); err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}

	logger.Info("Cart item removed successfully", map[string]interface{}{
		"cart_item_id": item.ID,
	})
	return nil
}

func (s *cartService) Clear(userID uint) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
