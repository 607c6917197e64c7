package notification

import (
	"context"
	"fmt"

	"campus-canteen/internal/logger"
	"campus-canteen/internal/messaging"
	"campus-canteen/internal/models"
)

// Subscriber consumes paid-order events and delivers customer
// notifications. Delivery here is just the structured log line; a push
// or SMS provider would hang off handleOrderPaid.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
	}
}

// Start consumes until the context is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleOrderPaid)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	return nil
}

// handleOrderPaid processes a single paid-order event
func (s *Subscriber) handleOrderPaid(ctx context.Context, body []byte) error {
	var msg models.OrderPaidMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		return fmt.Errorf("failed to parse order paid message: %w", err)
	}

	if msg.OrderID == "" {
		return fmt.Errorf("order paid message missing order_id")
	}

	s.logger.Info("notification_sent",
		fmt.Sprintf("Order %s paid, notifying user %s", msg.OrderID, msg.UserID),
		"", map[string]interface{}{
			"order_id":     msg.OrderID,
			"user_id":      msg.UserID,
			"stall_id":     msg.StallID,
			"total_amount": msg.TotalMinor,
			"currency":     msg.Currency,
			"item_count":   msg.ItemCount,
		})

	return nil
}

// Close stops the subscriber
func (s *Subscriber) Close() error {
	return s.consumer.Close()
}
