package controller

import (
	"errors"
	"net/http"

	"github.com/creamloft/creamloft-backend/internal/app/service"
	apperrors "github.com/creamloft/creamloft-backend/internal/errors"
	"github.com/creamloft/creamloft-backend/internal/middleware"
	"github.com/creamloft/creamloft-backend/pkg/payment/stripe"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

type SetDeliveryRequest struct {
	Option    string `json:"option" binding:"required"`
	AddressID *uint  `json:"address_id"`
}

// SetDeliveryOption records pickup or delivery for the pending checkout
// POST /api/v1/checkout/delivery
func (ctrl *CheckoutController) SetDeliveryOption(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SetDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	err := ctrl.checkoutService.SetDeliveryOption(userID, req.Option, req.AddressID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDeliveryOption):
			apperrors.BadRequest(c, apperrors.CheckoutInvalidDeliveryOption, "Unknown delivery option")
		case errors.Is(err, service.ErrCheckoutAddressMissing):
			apperrors.BadRequest(c, apperrors.CheckoutAddressRequired, "Delivery requires an address")
		case errors.Is(err, service.ErrAddressNotFound):
			apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
		case errors.Is(err, service.ErrAddressNotOwned):
			apperrors.Forbidden(c, "Address belongs to another user")
		default:
			log.Error("Failed to set delivery option", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "set delivery option")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery option saved",
		"option":  req.Option,
	})
}

// GetSession returns the current checkout state
// GET /api/v1/checkout/session
func (ctrl *CheckoutController) GetSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	checkout, err := ctrl.checkoutService.GetSession(userID)
	if err != nil {
		if errors.Is(err, service.ErrCheckoutSessionExpired) {
			apperrors.NotFound(c, apperrors.CheckoutSessionExpired, "Checkout session expired")
			return
		}
		log.Error("Failed to load checkout session", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "load checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": checkout,
	})
}

// CreatePaymentIntent prices the cart and opens a Stripe intent
// POST /api/v1/payment/intent
func (ctrl *CheckoutController) CreatePaymentIntent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	view, err := ctrl.checkoutService.CreatePaymentIntent(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		case errors.Is(err, stripe.ErrInvalidRequest):
			apperrors.BadRequest(c, apperrors.PaymentInvalidAmount, "Payment provider rejected the request")
		case errors.Is(err, stripe.ErrUnauthorized):
			log.Error("Payment provider rejected credentials", err, nil)
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PaymentProviderFailure, "Payment provider unavailable")
		default:
			log.Error("Failed to create payment intent", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create payment intent")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": view,
	})
}

// ConfirmPayment verifies the intent with Stripe and materializes the order
// POST /api/v1/payment/success
func (ctrl *CheckoutController) ConfirmPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.checkoutService.ConfirmPayment(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutSessionExpired):
			apperrors.NotFound(c, apperrors.CheckoutSessionExpired, "Checkout session expired")
		case errors.Is(err, service.ErrPaymentIntentMissing):
			apperrors.BadRequest(c, apperrors.PaymentIntentMissing, "No payment intent for this checkout")
		case errors.Is(err, service.ErrPaymentNotCompleted):
			apperrors.BadRequest(c, apperrors.PaymentNotCompleted, "Payment has not completed")
		case errors.Is(err, stripe.ErrIntentNotFound):
			apperrors.NotFound(c, apperrors.PaymentIntentMissing, "Payment intent not found")
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		default:
			log.Error("Failed to confirm payment", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "confirm payment")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment confirmed",
		"order":   order,
	})
}

// CancelPayment voids the pending intent
// POST /api/v1/payment/cancel
func (ctrl *CheckoutController) CancelPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	err := ctrl.checkoutService.CancelPayment(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutSessionExpired):
			apperrors.NotFound(c, apperrors.CheckoutSessionExpired, "Checkout session expired")
		case errors.Is(err, service.ErrPaymentIntentMissing):
			apperrors.BadRequest(c, apperrors.PaymentIntentMissing, "No payment intent for this checkout")
		default:
			log.Error("Failed to cancel payment", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "cancel payment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment cancelled",
	})
}

// PlaceOrder materializes the cart without upfront payment
// POST /api/v1/checkout/place-order
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.checkoutService.PlaceOrder(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
		case errors.Is(err, service.ErrAddressNotFound):
			apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
		case errors.Is(err, service.ErrAddressNotOwned):
			apperrors.Forbidden(c, "Address belongs to another user")
		default:
			log.Error("Failed to place order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "place order")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}
