package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"tshirt-bundle/logger"
	"tshirt-bundle/models"
)

var (
	// ErrCartRejected marks an explicit refusal by the storefront (e.g., status 422)
	ErrCartRejected = errors.New("cart rejected the items")
	// ErrCartTransport marks a request that could not be built, sent or decoded
	ErrCartTransport = errors.New("cart request failed")
)

// CartError carries the storefront's rejection status and message
type CartError struct {
	Status  int
	Message string
}

func (e *CartError) Error() string {
	return fmt.Sprintf("cart rejected the items (status %d): %s", e.Status, e.Message)
}

func (e *CartError) Unwrap() error {
	return ErrCartRejected
}

// CartClientInterface defines the contract for the storefront cart API
type CartClientInterface interface {
	Add(ctx context.Context, req *models.CartAddRequest) (json.RawMessage, error)
}

// CartClient posts line items to the storefront's cart/add.js endpoint
type CartClient struct {
	endpoint   string
	httpClient *http.Client
	validate   *validator.Validate
	logger     logger.ILogger
}

// Ensure CartClient implements CartClientInterface
var _ CartClientInterface = (*CartClient)(nil)

// NewCartClient creates a client for endpoint (e.g., "https://shop.example.com/cart/add.js")
func NewCartClient(endpoint string, timeout time.Duration, log logger.ILogger) *CartClient {
	return &CartClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		logger:     log,
	}
}

// Add submits req. On success it returns the raw cart JSON from the storefront.
// Rejections come back as *CartError; everything else wraps ErrCartTransport.
func (c *CartClient) Add(ctx context.Context, req *models.CartAddRequest) (json.RawMessage, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrCartTransport)
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid request: %v", ErrCartTransport, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrCartTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", ErrCartTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("cart", "posting cart add", map[string]interface{}{"endpoint": c.endpoint, "items": len(req.Items)})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrCartTransport, err)
	}

	var probe struct {
		Status      interface{} `json:"status"`
		Message     string      `json:"message"`
		Description string      `json:"description"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response (HTTP %d): %v", ErrCartTransport, resp.StatusCode, err)
	}

	if status, ok := probe.Status.(float64); ok && int(status) >= http.StatusBadRequest {
		return nil, &CartError{Status: int(status), Message: probe.Message}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &CartError{Status: resp.StatusCode, Message: probe.Message}
	}

	return json.RawMessage(data), nil
}
