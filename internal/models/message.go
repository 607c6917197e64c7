package models

import "time"

// OrderPaidMessage is published after an order has been durably
// committed, for stall displays and customer notifications
type OrderPaidMessage struct {
	OrderID          string    `json:"order_id"`
	UserID           string    `json:"user_id"`
	CollegeID        string    `json:"college_id"`
	StallID          string    `json:"stall_id"`
	TotalMinor       int64     `json:"total_amount"`
	Currency         string    `json:"currency"`
	ItemCount        int       `json:"item_count"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	PaidAt           time.Time `json:"paid_at"`
}

// NewOrderPaidMessage builds the notification payload for a committed order
func NewOrderPaidMessage(order *Order) *OrderPaidMessage {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}

	return &OrderPaidMessage{
		OrderID:          order.ID,
		UserID:           order.UserID,
		CollegeID:        order.CollegeID,
		StallID:          order.StallID,
		TotalMinor:       order.TotalMinor,
		Currency:         order.Currency,
		ItemCount:        count,
		GatewayPaymentID: order.GatewayPaymentID,
		PaidAt:           order.CreatedAt.UTC(),
	}
}
