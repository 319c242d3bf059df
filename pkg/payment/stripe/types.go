package stripe

// PaymentIntent represents a Stripe payment intent
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Payment intent statuses returned by the Stripe API
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// CreateIntentRequest holds parameters for creating a payment intent.
// Amount is in the smallest currency unit (paise for INR).
type CreateIntentRequest struct {
	Amount      int64
	Description string
	Metadata    map[string]string
}

// ErrorResponse represents a Stripe API error body
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
