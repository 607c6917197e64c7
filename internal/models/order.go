package models

import (
	"fmt"
	"time"
)

// OrderStatus represents the status of a committed order.
// PAID is the only status this service ever writes; refund and
// cancellation flows would be separate writers.
type OrderStatus string

const (
	StatusPaid OrderStatus = "PAID"
)

// CartLine is a client-supplied cart entry. Only the item id and
// quantity are taken from the client; prices always come from the
// catalog.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// MenuItem is a catalog entry under a college/stall scope
type MenuItem struct {
	ID          string    `json:"item_id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PriceMinor  int64     `json:"price" db:"price_minor"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
	UpdatedAt   time.Time `json:"-" db:"updated_at"`
}

// DraftLine is a priced cart line with the catalog snapshot taken at
// pricing time
type DraftLine struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	UnitPriceMinor int64  `json:"unit_price"`
	Quantity       int    `json:"quantity"`
	LineTotalMinor int64  `json:"line_total"`
}

// PricedOrderDraft is the authoritative priced cart. It lives only for
// the duration of a request and is never persisted.
type PricedOrderDraft struct {
	CollegeID  string      `json:"college_id"`
	StallID    string      `json:"stall_id"`
	Lines      []DraftLine `json:"lines"`
	TotalMinor int64       `json:"total"`
}

// Correlation carries the identifiers stamped onto a payment intent so
// verification can recover them without re-trusting client input
type Correlation struct {
	UserID    string
	CollegeID string
	StallID   string
}

// PaymentIntent is the gateway's record of a created order. The
// gateway is the source of truth for it until verification; nothing is
// stored locally.
type PaymentIntent struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// PaymentProof is the client-relayed payment confirmation triple
type PaymentProof struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// VerifiedPayment certifies a proof whose signature checked out
type VerifiedPayment struct {
	GatewayOrderID   string
	GatewayPaymentID string
}

// OrderItem is a persisted line snapshot. Name and price are copied
// from the draft at commit time and never re-derived from the catalog.
type OrderItem struct {
	ItemID     string `json:"item_id" db:"item_id"`
	Name       string `json:"name" db:"name"`
	Quantity   int    `json:"quantity" db:"quantity"`
	PriceMinor int64  `json:"price" db:"price_minor"`
}

// Order is the durable ledger record. At most one order exists per
// gateway order id.
type Order struct {
	ID               string      `json:"order_id" db:"id"`
	UserID           string      `json:"user_id" db:"user_id"`
	CollegeID        string      `json:"college_id" db:"college_id"`
	StallID          string      `json:"stall_id" db:"stall_id"`
	Items            []OrderItem `json:"items"`
	TotalMinor       int64       `json:"total_amount" db:"total_amount"`
	Currency         string      `json:"currency" db:"currency"`
	GatewayOrderID   string      `json:"gateway_order_id" db:"gateway_order_id"`
	GatewayPaymentID string      `json:"gateway_payment_id" db:"gateway_payment_id"`
	Status           OrderStatus `json:"status" db:"status"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// PlaceOrderRequest is the request to price a cart and issue a payment
// intent
type PlaceOrderRequest struct {
	StallID string     `json:"stall_id"`
	Items   []CartLine `json:"items"`
}

// PlaceOrderResponse returns the client-facing payment credentials
type PlaceOrderResponse struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// ConfirmPaymentRequest relays the gateway's payment proof together
// with the cart, which is re-priced server-side before commit
type ConfirmPaymentRequest struct {
	StallID          string     `json:"stall_id"`
	Items            []CartLine `json:"items"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	GatewayPaymentID string     `json:"gateway_payment_id"`
	Signature        string     `json:"signature"`
}

// Proof extracts the payment proof triple from the request
func (req *ConfirmPaymentRequest) Proof() PaymentProof {
	return PaymentProof{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	}
}

// RequestError is a structural request validation failure
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the structural shape of a place-order request.
// Catalog-dependent validation (existence, availability, price)
// happens in the pricing engine.
func (req *PlaceOrderRequest) Validate() error {
	return validateCart(req.StallID, req.Items)
}

// Validate checks the structural shape of a confirm-payment request
func (req *ConfirmPaymentRequest) Validate() error {
	return validateCart(req.StallID, req.Items)
}

func validateCart(stallID string, items []CartLine) error {
	if stallID == "" {
		return &RequestError{Field: "stall_id", Message: "stall_id is required"}
	}
	if len(items) == 0 {
		return &RequestError{Field: "items", Message: "items cannot be empty"}
	}
	if len(items) > 20 {
		return &RequestError{Field: "items", Message: "a maximum of 20 items is allowed"}
	}
	for i, line := range items {
		if line.ItemID == "" {
			return &RequestError{Field: fmt.Sprintf("items[%d].item_id", i), Message: "item_id is required"}
		}
		if line.Quantity <= 0 {
			return &RequestError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be greater than 0"}
		}
		if line.Quantity > 50 {
			return &RequestError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be less than or equal to 50"}
		}
	}
	return nil
}
