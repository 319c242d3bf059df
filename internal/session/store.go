package session

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no checkout session exists for the user.
var ErrNotFound = errors.New("checkout session not found")

// CheckoutSession carries checkout state between the delivery, payment
// and order placement steps. One session per user at a time.
type CheckoutSession struct {
	DeliveryOption  string `json:"delivery_option"`
	AddressID       *uint  `json:"address_id,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	Amount          int64  `json:"amount"`
}

// Store persists checkout sessions keyed by user ID.
type Store interface {
	Load(userID uint) (*CheckoutSession, error)
	Save(userID uint, session *CheckoutSession, ttl time.Duration) error
	Clear(userID uint) error
}
