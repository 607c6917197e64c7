package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus-canteen/internal/gateway"
	"campus-canteen/internal/identity"
	"campus-canteen/internal/ledger"
	"campus-canteen/internal/logger"
	"campus-canteen/internal/models"
	"campus-canteen/internal/payments"
	"campus-canteen/internal/pricing"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// GetMenu handles GET /menu?stall_id= requests
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	stallID := r.URL.Query().Get("stall_id")
	if stallID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "stall_id is required", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := h.service.GetMenu(ctx, bearerToken(r), stallID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stall_id":   stallID,
		"menu_items": items,
	})
}

// PlaceOrder handles POST /orders requests
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	var req models.PlaceOrderRequest
	if !h.decodeJSON(w, r, &req, requestID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	resp, err := h.service.PlaceOrder(ctx, bearerToken(r), &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// ConfirmPayment handles POST /orders/confirm requests
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	var req models.ConfirmPaymentRequest
	if !h.decodeJSON(w, r, &req, requestID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, err := h.service.ConfirmPayment(ctx, bearerToken(r), &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Order placed successfully",
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// GetOrderStatus handles GET /orders/status?gateway_order_id= requests
func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	gatewayOrderID := r.URL.Query().Get("gateway_order_id")
	if gatewayOrderID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "gateway_order_id is required", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := h.service.GetOrderStatus(ctx, bearerToken(r), gatewayOrderID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
	})
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/menu", h.withLogging(h.GetMenu))
	mux.HandleFunc("/orders", h.withLogging(h.PlaceOrder))
	mux.HandleFunc("/orders/confirm", h.withLogging(h.ConfirmPayment))
	mux.HandleFunc("/orders/status", h.withLogging(h.GetOrderStatus))
	mux.HandleFunc("/health", h.withLogging(h.HealthCheck))

	return mux
}

// decodeJSON parses the request body, writing a 400 on failure
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, requestID string) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.writeErrorResponse(w, http.StatusBadRequest, "Content-Type must be application/json", requestID)
		return false
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return false
	}
	return true
}

// writeServiceError maps component failures to transport status codes.
// Verification failures are collapsed to a single message so responses
// never hint at how the signature scheme failed.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, requestID string) {
	var reqErr *models.RequestError
	var vErr *pricing.ValidationError
	var gErr *gateway.Error

	switch {
	case errors.Is(err, identity.ErrInvalidCredential):
		h.writeErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token.", requestID)

	case errors.As(err, &reqErr):
		h.writeErrorResponse(w, http.StatusBadRequest, reqErr.Error(), requestID)

	case errors.As(err, &vErr):
		h.writeErrorResponse(w, http.StatusBadRequest, vErr.Message, requestID)

	case errors.Is(err, payments.ErrMalformedProof), errors.Is(err, payments.ErrSignatureMismatch):
		h.writeErrorResponse(w, http.StatusBadRequest, "Payment verification failed", requestID)

	case errors.As(err, &gErr):
		h.logger.Error("gateway_error", "Payment gateway call failed", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadGateway, "Payment service is currently unavailable", requestID)

	case errors.Is(err, ledger.ErrOrderNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)

	case errors.Is(err, ledger.ErrUnavailable):
		h.logger.Error("ledger_error", "Order store unavailable", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)

	default:
		h.logger.Error("request_failed", "Unhandled service error", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	h.writeJSON(w, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", "", err, nil)
	}
}

// bearerToken extracts the opaque credential from the Authorization
// header; the token format is the identity provider's business
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

type contextKey string

const requestIDKey contextKey = "request_id"

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return logger.GenerateRequestID()
}

// withLogging adds request logging middleware
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(rw, r)

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
