package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campus-canteen/internal/database"
	"campus-canteen/internal/logger"
	"campus-canteen/internal/models"
)

var (
	// ErrUnavailable signals a storage fault; the caller decides retry
	// policy since the gateway redelivers confirmations anyway
	ErrUnavailable = errors.New("order store unavailable")
	// ErrOrderNotFound signals that no order exists for the reference
	ErrOrderNotFound = errors.New("order not found")
)

// Ledger durably persists paid orders, at most once per gateway order
// reference
type Ledger interface {
	Commit(ctx context.Context, verified models.VerifiedPayment, draft *models.PricedOrderDraft, corr models.Correlation) (*models.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
}

// PostgresLedger implements Ledger over the orders/order_items tables
type PostgresLedger struct {
	db       *database.DB
	currency string
	logger   *logger.Logger
}

// NewPostgresLedger creates a ledger writing orders in the deployment
// currency
func NewPostgresLedger(db *database.DB, currency string, log *logger.Logger) *PostgresLedger {
	return &PostgresLedger{
		db:       db,
		currency: currency,
		logger:   log,
	}
}

// Commit inserts the order and its line snapshots in one transaction.
// The insert carries ON CONFLICT (gateway_order_id) DO NOTHING, so a
// redelivered confirmation takes the duplicate branch and returns the
// previously committed order instead of a second row. Committed orders
// are never mutated afterwards.
func (l *PostgresLedger) Commit(ctx context.Context, verified models.VerifiedPayment, draft *models.PricedOrderDraft, corr models.Correlation) (*models.Order, error) {
	order := &models.Order{
		ID:               uuid.New().String(),
		UserID:           corr.UserID,
		CollegeID:        corr.CollegeID,
		StallID:          corr.StallID,
		TotalMinor:       draft.TotalMinor,
		Currency:         l.currency,
		GatewayOrderID:   verified.GatewayOrderID,
		GatewayPaymentID: verified.GatewayPaymentID,
		Status:           models.StatusPaid,
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.ID, order.UserID, order.CollegeID, order.StallID,
		order.TotalMinor, order.Currency,
		order.GatewayOrderID, order.GatewayPaymentID, string(order.Status),
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// A previous confirmation won the insert. If its transaction was
		// still in flight, the conflicting insert waited for it, so the
		// committed row is visible now.
		existing, getErr := l.GetByGatewayOrderID(ctx, verified.GatewayOrderID)
		if getErr != nil {
			return nil, getErr
		}
		l.logger.Info("order_commit_duplicate",
			"Returning previously committed order for redelivered confirmation", "",
			map[string]interface{}{
				"order_id":         existing.ID,
				"gateway_order_id": existing.GatewayOrderID,
			})
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: insert order: %v", ErrUnavailable, err)
	}

	for _, line := range draft.Lines {
		item := models.OrderItem{
			ItemID:     line.ItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			PriceMinor: line.UnitPriceMinor,
		}
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL,
			order.ID, item.ItemID, item.Name, item.Quantity, item.PriceMinor)
		if err != nil {
			return nil, fmt.Errorf("%w: insert order item: %v", ErrUnavailable, err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}

	return order, nil
}

// GetByGatewayOrderID loads an order and its line snapshots by the
// gateway order reference
func (l *PostgresLedger) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	var status string

	err := l.db.QueryRow(ctx, database.GetOrderByGatewayOrderIDSQL, gatewayOrderID).Scan(
		&order.ID, &order.UserID, &order.CollegeID, &order.StallID,
		&order.TotalMinor, &order.Currency,
		&order.GatewayOrderID, &order.GatewayPaymentID, &status,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read order: %v", ErrUnavailable, err)
	}
	order.Status = models.OrderStatus(status)

	rows, err := l.db.Query(ctx, database.GetOrderItemsSQL, order.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: read order items: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Quantity, &item.PriceMinor); err != nil {
			return nil, fmt.Errorf("%w: scan order item: %v", ErrUnavailable, err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read order items: %v", ErrUnavailable, err)
	}

	return &order, nil
}
