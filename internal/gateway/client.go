package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"campus-canteen/internal/config"
	"campus-canteen/internal/logger"
	"campus-canteen/internal/models"
)

// Kind classifies gateway failures for the caller's retry decision
type Kind string

const (
	// KindUnavailable covers transport faults and timeouts; safe to retry
	KindUnavailable Kind = "gateway_unavailable"
	// KindRejected covers structured gateway errors, e.g. invalid amount
	KindRejected Kind = "gateway_rejected"
)

// Error is a typed payment gateway failure
type Error struct {
	Kind        Kind
	StatusCode  int
	Code        string
	Description string
}

func (e *Error) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("gateway rejected request (%d %s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("gateway unavailable: %s", e.Description)
}

// CreateOrderRequest is the outbound create-order call. Amount is in
// the gateway's minor-unit convention.
type CreateOrderRequest struct {
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes"`
}

// Client issues payment intents with the external gateway
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (models.PaymentIntent, error)
	KeyID() string
}

// RestyClient talks to the gateway's REST API with key-id/key-secret
// basic auth
type RestyClient struct {
	http   *resty.Client
	keyID  string
	logger *logger.Logger
}

// NewClient creates a gateway client from deployment credentials
func NewClient(cfg config.GatewayConfig, log *logger.Logger) *RestyClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &RestyClient{
		http:   client,
		keyID:  cfg.KeyID,
		logger: log,
	}
}

// KeyID returns the public key id the client app needs to complete
// payment out-of-band
func (c *RestyClient) KeyID() string {
	return c.keyID
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates a payment intent for the given amount. Nothing
// is written locally on either failure path.
func (c *RestyClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (models.PaymentIntent, error) {
	var result createOrderResponse
	var gatewayErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&gatewayErr).
		Post("/v1/orders")
	if err != nil {
		return models.PaymentIntent{}, &Error{
			Kind:        KindUnavailable,
			Description: err.Error(),
		}
	}

	if resp.IsError() {
		return models.PaymentIntent{}, &Error{
			Kind:        KindRejected,
			StatusCode:  resp.StatusCode(),
			Code:        gatewayErr.Error.Code,
			Description: gatewayErr.Error.Description,
		}
	}

	if result.ID == "" {
		return models.PaymentIntent{}, &Error{
			Kind:        KindUnavailable,
			StatusCode:  resp.StatusCode(),
			Description: "gateway response missing order id",
		}
	}

	c.logger.Debug("gateway_order_created", "Created gateway order", "", map[string]interface{}{
		"gateway_order_id": result.ID,
		"amount":           result.Amount,
		"currency":         result.Currency,
	})

	return models.PaymentIntent{
		GatewayOrderID: result.ID,
		AmountMinor:    result.Amount,
		Currency:       result.Currency,
	}, nil
}
