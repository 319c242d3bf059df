package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/internal/app/repository"
	"github.com/creamloft/creamloft-backend/internal/session"
	"github.com/creamloft/creamloft-backend/pkg/logger"
	"github.com/creamloft/creamloft-backend/pkg/payment/stripe"
	"gorm.io/gorm"
)

var (
	ErrInvalidDeliveryOption  = errors.New("invalid delivery option")
	ErrCheckoutAddressMissing = errors.New("delivery requires an address")
	ErrCheckoutSessionExpired = errors.New("checkout session expired")
	ErrPaymentIntentMissing   = errors.New("no payment intent for this checkout")
	ErrPaymentNotCompleted    = errors.New("payment has not completed")
)

// Delivery options a checkout can choose from.
const (
	DeliveryOptionPickup   = "pickup"
	DeliveryOptionDelivery = "delivery"
)

const paymentProviderStripe = "stripe"

// PaymentIntentView is what the client needs to confirm a payment.
type PaymentIntentView struct {
	IntentID       string  `json:"intent_id"`
	ClientSecret   string  `json:"client_secret"`
	PublishableKey string  `json:"publishable_key"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	Total          float64 `json:"total"`
}

type CheckoutService interface {
	SetDeliveryOption(userID uint, option string, addressID *uint) error
	GetSession(userID uint) (*session.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, userID uint) (*PaymentIntentView, error)
	ConfirmPayment(ctx context.Context, userID uint) (*model.Order, error)
	CancelPayment(ctx context.Context, userID uint) error
	PlaceOrder(userID uint) (*model.Order, error)
}

type checkoutService struct {
	cartService  CartService
	orderService OrderService
	addressRepo  repository.AddressRepository
	sessions     session.Store
	sessionTTL   time.Duration
	stripeClient *stripe.Client
}

func NewCheckoutService(
	cartService CartService,
	orderService OrderService,
	addressRepo repository.AddressRepository,
	sessions session.Store,
	sessionTTL time.Duration,
	stripeClient *stripe.Client,
) CheckoutService {
	return &checkoutService{
		cartService:  cartService,
		orderService: orderService,
		addressRepo:  addressRepo,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
		stripeClient: stripeClient,
	}
}

// SetDeliveryOption starts or updates the checkout session. Delivery
// requires an address owned by the user; pickup clears any address.
func (s *checkoutService) SetDeliveryOption(userID uint, option string, addressID *uint) error {
	logger.Info("Setting checkout delivery option", map[string]interface{}{
		"user_id": userID,
		"option":  option,
	})

	switch option {
	case DeliveryOptionPickup:
		addressID = nil
	case DeliveryOptionDelivery:
		if addressID == nil {
			return ErrCheckoutAddressMissing
		}
		address, err := s.addressRepo.FindByID(*addressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}
		if address.UserID != userID {
			return ErrAddressNotOwned
		}
	default:
		return ErrInvalidDeliveryOption
	}

	checkout, err := s.sessions.Load(userID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return err
		}
		checkout = &session.CheckoutSession{}
	}

	checkout.DeliveryOption = option
	checkout.AddressID = addressID

	return s.sessions.Save(userID, checkout, s.sessionTTL)
}

func (s *checkoutService) GetSession(userID uint) (*session.CheckoutSession, error) {
	checkout, err := s.sessions.Load(userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrCheckoutSessionExpired
		}
		return nil, err
	}
	return checkout, nil
}

// CreatePaymentIntent prices the current cart and registers a payment
// intent with Stripe for that amount in minor currency units.
func (s *checkoutService) CreatePaymentIntent(ctx context.Context, userID uint) (*PaymentIntentView, error) {
	logger.Info("Creating payment intent", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.cartService.ListItems(userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	amount := int64(math.Round(cart.Total * 100))

	intent, err := s.stripeClient.CreateIntent(ctx, stripe.CreateIntentRequest{
		Amount:      amount,
		Description: "Creamloft ice cream order",
		Metadata:    map[string]string{"user_id": fmt.Sprintf("%d", userID)},
	})
	if err != nil {
		logger.Error("Failed to create payment intent", err, map[string]interface{}{
			"user_id": userID,
			"amount":  amount,
		})
		return nil, err
	}

	checkout, err := s.sessions.Load(userID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
		checkout = &session.CheckoutSession{DeliveryOption: DeliveryOptionPickup}
	}
	checkout.PaymentIntentID = intent.ID
	checkout.Amount = amount

	if err := s.sessions.Save(userID, checkout, s.sessionTTL); err != nil {
		return nil, err
	}

	logger.Info("Payment intent created", map[string]interface{}{
		"user_id":   userID,
		"intent_id": intent.ID,
		"amount":    amount,
	})

	return &PaymentIntentView{
		IntentID:       intent.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.stripeClient.GetConfig().PublishableKey,
		Amount:         amount,
		Currency:       intent.Currency,
		Total:          cart.Total,
	}, nil
}

// ConfirmPayment verifies the intent succeeded with Stripe and then
// materializes the order as payment-confirmed.
func (s *checkoutService) ConfirmPayment(ctx context.Context, userID uint) (*model.Order, error) {
	logger.Info("Confirming payment", map[string]interface{}{
		"user_id": userID,
	})

	checkout, err := s.sessions.Load(userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrCheckoutSessionExpired
		}
		return nil, err
	}
	if checkout.PaymentIntentID == "" {
		return nil, ErrPaymentIntentMissing
	}

	intent, err := s.stripeClient.GetIntent(ctx, checkout.PaymentIntentID)
	if err != nil {
		logger.Error("Failed to verify payment intent", err, map[string]interface{}{
			"user_id":   userID,
			"intent_id": checkout.PaymentIntentID,
		})
		return nil, err
	}
	if intent.Status != stripe.StatusSucceeded {
		logger.Warn("Payment intent not in succeeded state", map[string]interface{}{
			"user_id":   userID,
			"intent_id": intent.ID,
			"status":    intent.Status,
		})
		return nil, ErrPaymentNotCompleted
	}

	order, err := s.orderService.CreateOrderFromCart(userID, PlaceOrderInput{
		AddressID:        checkout.AddressID,
		PaymentProvider:  paymentProviderStripe,
		PaymentIntentID:  checkout.PaymentIntentID,
		PaymentConfirmed: true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Clear(userID); err != nil {
		logger.Warn("Failed to clear checkout session after order", map[string]interface{}{
			"user_id": userID,
		})
	}
	return order, nil
}

// CancelPayment voids the pending intent and forgets it. The delivery
// choice survives so the user can retry.
func (s *checkoutService) CancelPayment(ctx context.Context, userID uint) error {
	logger.Info("Cancelling payment", map[string]interface{}{
		"user_id": userID,
	})

	checkout, err := s.sessions.Load(userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrCheckoutSessionExpired
		}
		return err
	}
	if checkout.PaymentIntentID == "" {
		return ErrPaymentIntentMissing
	}

	if _, err := s.stripeClient.CancelIntent(ctx, checkout.PaymentIntentID); err != nil {
		// An intent in a terminal state cannot be cancelled twice
		if !errors.Is(err, stripe.ErrAlreadyProcessed) {
			logger.Error("Failed to cancel payment intent", err, map[string]interface{}{
				"user_id":   userID,
				"intent_id": checkout.PaymentIntentID,
			})
			return err
		}
	}

	checkout.PaymentIntentID = ""
	checkout.Amount = 0
	return s.sessions.Save(userID, checkout, s.sessionTTL)
}

// PlaceOrder materializes the cart without payment, leaving the order
// pending.
func (s *checkoutService) PlaceOrder(userID uint) (*model.Order, error) {
	logger.Info("Placing order without upfront payment", map[string]interface{}{
		"user_id": userID,
	})

	var addressID *uint
	checkout, err := s.sessions.Load(userID)
	if err == nil {
		addressID = checkout.AddressID
	} else if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	order, err := s.orderService.CreateOrderFromCart(userID, PlaceOrderInput{
		AddressID: addressID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Clear(userID); err != nil {
		logger.Warn("Failed to clear checkout session after order", map[string]interface{}{
			"user_id": userID,
		})
	}
	return order, nil
}
