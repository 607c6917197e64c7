package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"campus-canteen/internal/config"
	"campus-canteen/internal/logger"
)

// ErrInvalidCredential signals a bad or expired bearer token
var ErrInvalidCredential = errors.New("invalid or expired credential")

// Identity is a resolved principal and its tenant assignment
type Identity struct {
	UserID    string
	CollegeID string
}

// Resolver maps an opaque bearer credential to a user identity. The
// credential format itself is never parsed here; the identity provider
// owns it.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

// ProviderClient resolves identities against the hosted identity
// provider over HTTP
type ProviderClient struct {
	http   *resty.Client
	logger *logger.Logger
}

// NewProviderClient creates a resolver backed by the configured
// identity provider
func NewProviderClient(cfg config.IdentityConfig, log *logger.Logger) *ProviderClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout)

	return &ProviderClient{
		http:   client,
		logger: log,
	}
}

type resolveResponse struct {
	UserID    string `json:"user_id"`
	CollegeID string `json:"college_id"`
}

// Resolve verifies the token with the identity provider and returns
// the user's id and college assignment
func (c *ProviderClient) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidCredential
	}

	var payload resolveResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&payload).
		Get("/v1/users/me")
	if err != nil {
		return Identity{}, fmt.Errorf("identity provider unreachable: %w", err)
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		c.logger.Debug("credential_rejected", "Identity provider rejected credential", "", map[string]interface{}{
			"status_code": resp.StatusCode(),
		})
		return Identity{}, ErrInvalidCredential
	}
	if resp.IsError() {
		return Identity{}, fmt.Errorf("identity provider returned status %d", resp.StatusCode())
	}

	// A user without a college assignment cannot be scoped to a menu
	if payload.UserID == "" || payload.CollegeID == "" {
		return Identity{}, ErrInvalidCredential
	}

	return Identity{
		UserID:    payload.UserID,
		CollegeID: payload.CollegeID,
	}, nil
}
