package stripe

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the payment process fails
	ErrPaymentFailed = errors.New("payment failed")

	// ErrIntentNotFound is returned when the payment intent does not exist
	ErrIntentNotFound = errors.New("payment intent not found")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API key is invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrAlreadyProcessed is returned when the intent is in a terminal state
	ErrAlreadyProcessed = errors.New("payment intent already processed")
)
