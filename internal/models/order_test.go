package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PlaceOrderRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: PlaceOrderRequest{
				StallID: "stall-1",
				Items:   []CartLine{{ItemID: "item-x", Quantity: 2}},
			},
			wantErr: false,
		},
		{
			name: "missing stall id",
			req: PlaceOrderRequest{
				Items: []CartLine{{ItemID: "item-x", Quantity: 2}},
			},
			wantErr: true,
		},
		{
			name:    "empty items",
			req:     PlaceOrderRequest{StallID: "stall-1"},
			wantErr: true,
		},
		{
			name: "zero quantity",
			req: PlaceOrderRequest{
				StallID: "stall-1",
				Items:   []CartLine{{ItemID: "item-x", Quantity: 0}},
			},
			wantErr: true,
		},
		{
			name: "negative quantity",
			req: PlaceOrderRequest{
				StallID: "stall-1",
				Items:   []CartLine{{ItemID: "item-x", Quantity: -1}},
			},
			wantErr: true,
		},
		{
			name: "missing item id",
			req: PlaceOrderRequest{
				StallID: "stall-1",
				Items:   []CartLine{{Quantity: 1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				var reqErr *RequestError
				require.ErrorAs(t, err, &reqErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfirmPaymentRequest_Proof(t *testing.T) {
	req := ConfirmPaymentRequest{
		StallID:          "stall-1",
		Items:            []CartLine{{ItemID: "item-x", Quantity: 1}},
		GatewayOrderID:   "ord_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	}

	proof := req.Proof()
	assert.Equal(t, "ord_1", proof.GatewayOrderID)
	assert.Equal(t, "pay_1", proof.GatewayPaymentID)
	assert.Equal(t, "sig", proof.Signature)
}

func TestNewOrderPaidMessage(t *testing.T) {
	order := &Order{
		ID:               "order-1",
		UserID:           "alice",
		CollegeID:        "college-1",
		StallID:          "stall-1",
		TotalMinor:       450,
		Currency:         "INR",
		GatewayPaymentID: "pay_1",
		Items: []OrderItem{
			{ItemID: "item-x", Name: "Samosa", Quantity: 2, PriceMinor: 150},
			{ItemID: "item-z", Name: "Chai", Quantity: 1, PriceMinor: 150},
		},
	}

	msg := NewOrderPaidMessage(order)
	assert.Equal(t, "order-1", msg.OrderID)
	assert.Equal(t, int64(450), msg.TotalMinor)
	assert.Equal(t, 3, msg.ItemCount)
	assert.Equal(t, "pay_1", msg.GatewayPaymentID)
}
