package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campus-canteen/internal/gateway"
	"campus-canteen/internal/identity"
	"campus-canteen/internal/ledger"
	"campus-canteen/internal/logger"
	"campus-canteen/internal/models"
	"campus-canteen/internal/payments"
	"campus-canteen/internal/pricing"
)

// Publisher publishes paid-order events; satisfied by
// messaging.Publisher
type Publisher interface {
	PublishOrderPaid(ctx context.Context, msg *models.OrderPaidMessage) error
	PublishNotification(ctx context.Context, msg *models.OrderPaidMessage) error
}

// MenuReader is the catalog read path the browse endpoint needs
type MenuReader interface {
	ListStallMenu(ctx context.Context, collegeID, stallID string) ([]models.MenuItem, error)
}

// Service orchestrates the order placement and payment reconciliation
// workflow. It holds no mutable state; every dependency is injected at
// startup.
type Service struct {
	identity  identity.Resolver
	menu      MenuReader
	pricing   *pricing.Engine
	gateway   gateway.Client
	verifier  *payments.Verifier
	ledger    ledger.Ledger
	publisher Publisher
	currency  string
	logger    *logger.Logger
}

// NewService wires the order workflow from its collaborators
func NewService(
	resolver identity.Resolver,
	menu MenuReader,
	engine *pricing.Engine,
	gatewayClient gateway.Client,
	verifier *payments.Verifier,
	orderLedger ledger.Ledger,
	publisher Publisher,
	currency string,
	log *logger.Logger,
) *Service {
	return &Service{
		identity:  resolver,
		menu:      menu,
		pricing:   engine,
		gateway:   gatewayClient,
		verifier:  verifier,
		ledger:    orderLedger,
		publisher: publisher,
		currency:  currency,
		logger:    log,
	}
}

// GetMenu returns the available items of a stall in the caller's college
func (s *Service) GetMenu(ctx context.Context, token, stallID string) ([]models.MenuItem, error) {
	id, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.menu.ListStallMenu(ctx, id.CollegeID, stallID)
}

// PlaceOrder prices the cart against the live catalog and issues a
// payment intent with the gateway. Nothing is persisted locally; the
// gateway owns the intent until a verified confirmation arrives.
func (s *Service) PlaceOrder(ctx context.Context, token string, req *models.PlaceOrderRequest, requestID string) (*models.PlaceOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	draft, err := s.pricing.PriceCart(ctx, id.CollegeID, req.StallID, req.Items)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		AmountMinor: draft.TotalMinor,
		Currency:    s.currency,
		Receipt:     generateReceipt(id.UserID),
		Notes: map[string]string{
			"user_id":    id.UserID,
			"college_id": id.CollegeID,
			"stall_id":   req.StallID,
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment_intent_issued", "Issued payment intent", requestID, map[string]interface{}{
		"gateway_order_id": intent.GatewayOrderID,
		"amount":           intent.AmountMinor,
		"currency":         intent.Currency,
		"stall_id":         req.StallID,
	})

	return &models.PlaceOrderResponse{
		GatewayOrderID: intent.GatewayOrderID,
		AmountMinor:    intent.AmountMinor,
		Currency:       intent.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// ConfirmPayment verifies the gateway's proof and commits the order
// exactly once. The cart is re-priced server-side; amounts relayed by
// the client are never trusted. Redelivered confirmations return the
// already-committed order.
func (s *Service) ConfirmPayment(ctx context.Context, token string, req *models.ConfirmPaymentRequest, requestID string) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	verified, err := s.verifier.Verify(req.Proof())
	if err != nil {
		// Security event: keep it distinct from ordinary validation noise
		s.logger.Error("payment_verification_failed", "Rejected payment proof", requestID, err, map[string]interface{}{
			"user_id":          id.UserID,
			"gateway_order_id": req.GatewayOrderID,
		})
		return nil, err
	}

	draft, err := s.pricing.PriceCart(ctx, id.CollegeID, req.StallID, req.Items)
	if err != nil {
		return nil, err
	}

	order, err := s.ledger.Commit(ctx, verified, draft, models.Correlation{
		UserID:    id.UserID,
		CollegeID: id.CollegeID,
		StallID:   req.StallID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_committed", "Order committed", requestID, map[string]interface{}{
		"order_id":         order.ID,
		"gateway_order_id": order.GatewayOrderID,
		"total_amount":     order.TotalMinor,
	})

	// Best effort: the order is durable either way
	s.publishPaid(ctx, order, requestID)

	return order, nil
}

// GetOrderStatus returns the caller's committed order for a gateway
// order reference
func (s *Service) GetOrderStatus(ctx context.Context, token, gatewayOrderID string) (*models.Order, error) {
	id, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	order, err := s.ledger.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}

	// Do not leak other users' orders through reference guessing
	if order.UserID != id.UserID {
		return nil, ledger.ErrOrderNotFound
	}

	return order, nil
}

func (s *Service) publishPaid(ctx context.Context, order *models.Order, requestID string) {
	if s.publisher == nil {
		return
	}

	msg := models.NewOrderPaidMessage(order)
	if err := s.publisher.PublishOrderPaid(ctx, msg); err != nil {
		s.logger.Error("order_paid_publish_failed", "Failed to publish paid-order event", requestID, err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish notification", requestID, err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
}

// generateReceipt builds a gateway receipt unique per issuance attempt
func generateReceipt(userID string) string {
	prefix := userID
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	nonce := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("rcpt_%s_%s", prefix, nonce)
}
