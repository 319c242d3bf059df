package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAccessDenied  = errors.New("order access denied")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrAddressNotOwned    = errors.New("address does not belong to user")
)

// OrderNotifier receives order lifecycle events. Implementations must not
// block; a nil notifier disables notifications.
type OrderNotifier interface {
	NotifyOrderCreated(order *model.Order)
	NotifyOrderStatusChanged(order *model.Order, previous model.OrderStatus)
}

// PlaceOrderInput carries checkout state into order materialization.
type PlaceOrderInput struct {
	AddressID        *uint
	PaymentProvider  string
	PaymentIntentID  string
	PaymentConfirmed bool
}

type OrderService interface {
	CreateOrderFromCart(userID uint, input PlaceOrderInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	GetOrder(orderID uint) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	notifier    OrderNotifier
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	notifier OrderNotifier,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		notifier:    notifier,
	}
}

// CreateOrderFromCart materializes the user's cart into a persisted order.
// Each line is admitted with a conditional stock decrement; a line whose
// stock no longer covers the quantity is dropped from the order without
// failing the whole placement. The order, its items, the stock updates and
// the cart clear commit as one transaction.
func (s *orderService) CreateOrderFromCart(userID uint, input PlaceOrderInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":           userID,
		"address_id":        input.AddressID,
		"payment_intent_id": input.PaymentIntentID,
	})

	if input.AddressID != nil {
		address, err := s.addressRepo.FindByID(*input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAddressNotFound
			}
			logger.Error("Failed to fetch delivery address", err, map[string]interface{}{
				"address_id": *input.AddressID,
			})
			return nil, err
		}
		if address.UserID != userID {
			logger.Warn("Delivery address ownership mismatch", map[string]interface{}{
				"user_id":    userID,
				"address_id": *input.AddressID,
				"owner_id":   address.UserID,
			})
			return nil, ErrAddressNotOwned
		}
	}

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(cartItems) == 0 {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		totalAmount float64
		orderItems  []model.OrderItem
	)

	for _, cartItem := range cartItems {
		var product model.Product
		if err := tx.First(&product, cartItem.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product gone from catalog, dropping cart line", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				continue
			}
			tx.Rollback()
			logger.Error("Failed to fetch product during order creation", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		// Conditional decrement: only succeeds when stock still covers the
		// quantity, so concurrent checkouts can never drive stock negative.
		result := tx.Model(&model.Product{}).
			Where("id = ? AND stock_quantity >= ?", cartItem.ProductID, cartItem.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity))
		if result.Error != nil {
			tx.Rollback()
			logger.Error("Failed to decrement product stock", result.Error, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			logger.Warn("Insufficient stock, dropping cart line", map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
				"requested":  cartItem.Quantity,
			})
			continue
		}

		snapshot, err := json.Marshal(cartItem.Customization())
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		productID := cartItem.ProductID
		orderItems = append(orderItems, model.OrderItem{
			ProductID:             &productID,
			ProductName:           product.Name,
			Quantity:              cartItem.Quantity,
			Price:                 cartItem.UnitPrice,
			CustomizationSnapshot: string(snapshot),
		})
		totalAmount += cartItem.UnitPrice * float64(cartItem.Quantity)
	}

	status := model.OrderStatusPending
	paymentStatus := model.PaymentStatusPending
	if input.PaymentConfirmed {
		status = model.OrderStatusProcessing
		paymentStatus = model.PaymentStatusCompleted
	}

	order := &model.Order{
		UserID:          userID,
		TotalAmount:     totalAmount,
		Status:          status,
		PaymentStatus:   paymentStatus,
		PaymentProvider: input.PaymentProvider,
		PaymentIntentID: input.PaymentIntentID,
		AddressID:       input.AddressID,
		OrderItems:      orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":      userID,
			"total_amount": totalAmount,
		})
		return nil, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"total_amount": totalAmount,
		"item_count":   len(orderItems),
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(created)
	}
	return created, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// GetOrder fetches an order without ownership checks. Admin use only.
func (s *orderService) GetOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !model.IsValidOrderStatus(model.OrderStatus(filter.Status)) {
		return nil, ErrInvalidOrderStatus
	}

	orders, err := s.orderRepo.FindAll(filter)
	if err != nil {
		logger.Error("Failed to list orders", err, map[string]interface{}{
			"status": filter.Status,
		})
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus applies one step of the status machine. Unknown target
// statuses and illegal transitions are rejected, never silently swallowed.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if !model.IsValidOrderStatus(status) {
		logger.Warn("Unknown order status rejected", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order for status update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	previous := order.Status
	if !previous.CanTransitionTo(status) {
		logger.Warn("Illegal order status transition rejected", map[string]interface{}{
			"order_id": orderID,
			"from":     previous,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	order.Status = status

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	})

	if s.notifier != nil {
		s.notifier.NotifyOrderStatusChanged(order, previous)
	}
	return order, nil
}

func (s *orderService) UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error {
	logger.Info("Updating order payment status", map[string]interface{}{
		"order_id":       orderID,
		"payment_status": status,
	})

	if _, err := s.orderRepo.FindByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	return s.orderRepo.UpdatePaymentStatus(orderID, status)
}
