package pricing

import (
	"context"
	"errors"
	"fmt"

	"campus-canteen/internal/catalog"
	"campus-canteen/internal/models"
)

// ErrorKind names the ways a cart can fail validation
type ErrorKind string

const (
	ItemNotFound       ErrorKind = "item_not_found"
	ItemUnavailable    ErrorKind = "item_unavailable"
	EmptyOrTrivialCart ErrorKind = "empty_or_trivial_cart"
)

// ValidationError is a user-correctable cart failure
type ValidationError struct {
	Kind     ErrorKind
	ItemID   string
	ItemName string
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Engine computes an authoritative total for a cart against live
// catalog state. Client-supplied prices are never consulted.
type Engine struct {
	catalog catalog.Reader
}

// NewEngine creates a pricing engine over the given catalog reader
func NewEngine(reader catalog.Reader) *Engine {
	return &Engine{catalog: reader}
}

// PriceCart prices the cart line by line, snapshotting name and unit
// price per line. Any failing line aborts the whole cart; no partial
// draft is ever returned. All arithmetic is in integer minor currency
// units.
func (e *Engine) PriceCart(ctx context.Context, collegeID, stallID string, lines []models.CartLine) (*models.PricedOrderDraft, error) {
	draft := &models.PricedOrderDraft{
		CollegeID: collegeID,
		StallID:   stallID,
		Lines:     make([]models.DraftLine, 0, len(lines)),
	}

	for _, line := range lines {
		item, err := e.catalog.GetItem(ctx, collegeID, stallID, line.ItemID)
		if errors.Is(err, catalog.ErrItemNotFound) {
			return nil, &ValidationError{
				Kind:    ItemNotFound,
				ItemID:  line.ItemID,
				Message: "One or more items in your cart no longer exist.",
			}
		}
		if err != nil {
			return nil, fmt.Errorf("catalog read failed for item %s: %w", line.ItemID, err)
		}

		if !item.IsAvailable {
			return nil, &ValidationError{
				Kind:     ItemUnavailable,
				ItemID:   line.ItemID,
				ItemName: item.Name,
				Message:  fmt.Sprintf("Sorry, %s is currently out of stock.", item.Name),
			}
		}

		lineTotal := item.PriceMinor * int64(line.Quantity)
		draft.Lines = append(draft.Lines, models.DraftLine{
			ItemID:         item.ID,
			Name:           item.Name,
			UnitPriceMinor: item.PriceMinor,
			Quantity:       line.Quantity,
			LineTotalMinor: lineTotal,
		})
		draft.TotalMinor += lineTotal
	}

	if draft.TotalMinor <= 0 {
		return nil, &ValidationError{
			Kind:    EmptyOrTrivialCart,
			Message: "Invalid order total. Check item availability.",
		}
	}

	return draft, nil
}
