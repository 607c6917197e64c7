package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-canteen/internal/config"
	"campus-canteen/internal/logger"
)

func newTestClient(baseURL string) *RestyClient {
	cfg := config.GatewayConfig{
		BaseURL:   baseURL,
		KeyID:     "key_test",
		KeySecret: "secret_test",
		Currency:  "INR",
	}
	return NewClient(cfg, logger.New("test"))
}

func TestCreateOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(300), req.AmountMinor)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "user-1", req.Notes["user_id"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "ord_1",
			"amount":   req.AmountMinor,
			"currency": req.Currency,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	intent, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		AmountMinor: 300,
		Currency:    "INR",
		Receipt:     "rcpt_abc",
		Notes:       map[string]string{"user_id": "user-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ord_1", intent.GatewayOrderID)
	assert.Equal(t, int64(300), intent.AmountMinor)
	assert.Equal(t, "INR", intent.Currency)
}

func TestCreateOrder_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount must be at least 100",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{AmountMinor: 1, Currency: "INR"})

	var gErr *Error
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, KindRejected, gErr.Kind)
	assert.Equal(t, http.StatusBadRequest, gErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", gErr.Code)
}

func TestCreateOrder_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(srv.URL)
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{AmountMinor: 300, Currency: "INR"})

	var gErr *Error
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, KindUnavailable, gErr.Kind)
}
