package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-canteen/internal/logger"
	"campus-canteen/internal/models"
)

func newTestHandler(env *testEnv) http.Handler {
	return NewHandler(env.service, logger.New("test")).SetupRoutes()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_PlaceOrder(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	rec := doJSON(t, h, http.MethodPost, "/orders", "token-alice", models.PlaceOrderRequest{
		StallID: "stall-1",
		Items:   []models.CartLine{{ItemID: "item-x", Quantity: 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.PlaceOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(300), resp.AmountMinor)
	assert.Equal(t, "key_test", resp.KeyID)
	assert.NotEmpty(t, resp.GatewayOrderID)
}

func TestHandler_PlaceOrder_MissingToken(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	rec := doJSON(t, h, http.MethodPost, "/orders", "", models.PlaceOrderRequest{
		StallID: "stall-1",
		Items:   []models.CartLine{{ItemID: "item-x", Quantity: 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_PlaceOrder_UnavailableItemMessage(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	rec := doJSON(t, h, http.MethodPost, "/orders", "token-alice", models.PlaceOrderRequest{
		StallID: "stall-1",
		Items:   []models.CartLine{{ItemID: "item-y", Quantity: 1}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vada Pav", "the failing item must be named for the user")
}

func TestHandler_ConfirmPayment_ForgedProofRevealsNothing(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	forged := env.confirmRequest("ord_1", "pay_1")
	forged.Signature = "deadbeef"

	malformed := env.confirmRequest("ord_1", "pay_1")
	malformed.GatewayPaymentID = ""
	malformed.Signature = ""

	recForged := doJSON(t, h, http.MethodPost, "/orders/confirm", "token-alice", forged)
	recMalformed := doJSON(t, h, http.MethodPost, "/orders/confirm", "token-alice", malformed)

	require.Equal(t, http.StatusBadRequest, recForged.Code)
	require.Equal(t, http.StatusBadRequest, recMalformed.Code)

	// Both failure modes must look identical to the caller
	var bodyForged, bodyMalformed map[string]interface{}
	require.NoError(t, json.Unmarshal(recForged.Body.Bytes(), &bodyForged))
	require.NoError(t, json.Unmarshal(recMalformed.Body.Bytes(), &bodyMalformed))
	assert.Equal(t, "Payment verification failed", bodyForged["error"])
	assert.Equal(t, bodyForged["error"], bodyMalformed["error"])
}

func TestHandler_ConfirmPayment_Success(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	rec := doJSON(t, h, http.MethodPost, "/orders/confirm", "token-alice", env.confirmRequest("ord_1", "pay_1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Order placed successfully", body["message"])
	assert.NotEmpty(t, body["order_id"])
	assert.Equal(t, string(models.StatusPaid), body["status"])
}

func TestHandler_InvalidJSON(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-alice")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_OrderStatus_NotFound(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	rec := doJSON(t, h, http.MethodGet, "/orders/status?gateway_order_id=ord_missing", "token-alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	env := newTestEnv()
	h := newTestHandler(env)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
