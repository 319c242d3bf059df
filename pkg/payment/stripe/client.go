package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client represents a Stripe API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create HTTP client with reasonable timeout
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// CreateIntent creates a payment intent for the given amount
func (c *Client) CreateIntent(ctx context.Context, req CreateIntentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", c.config.Currency)
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "payment_intents", form)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(resp, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent response: %w", err)
	}

	return &intent, nil
}

// GetIntent retrieves a payment intent by ID
func (c *Client) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: intent ID is required", ErrInvalidRequest)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "payment_intents/"+intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(resp, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent response: %w", err)
	}

	return &intent, nil
}

// CancelIntent cancels a payment intent that has not yet succeeded
func (c *Client) CancelIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: intent ID is required", ErrInvalidRequest)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "payment_intents/"+intentID+"/cancel", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(resp, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent response: %w", err)
	}

	return &intent, nil
}

// doRequest performs an HTTP request to the Stripe API.
// Stripe expects form-encoded request bodies and Bearer authentication.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, form url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle error responses
	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
		}

		errorMsg := fmt.Sprintf("Stripe API error - Status: %d, Type: %s, Code: %s, Message: %s",
			resp.StatusCode, errResp.Error.Type, errResp.Error.Code, errResp.Error.Message)

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrIntentNotFound, errorMsg)
		case http.StatusBadRequest:
			if errResp.Error.Code == "payment_intent_unexpected_state" {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, errorMsg)
			}
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, errorMsg)
		}
	}

	return respBody, nil
}
