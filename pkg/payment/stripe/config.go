package stripe

// Config represents the configuration for the Stripe client
type Config struct {
	// SecretKey is the Stripe secret API key used for server-side calls
	SecretKey string

	// PublishableKey is the Stripe publishable key handed to clients
	PublishableKey string

	// BaseURL is the Stripe API base URL
	BaseURL string

	// Currency is the ISO currency code used for payment intents
	Currency string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.Currency == "" {
		return ErrInvalidRequest
	}
	return nil
}
