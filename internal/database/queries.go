package database

// Order ledger queries. The unique index on gateway_order_id makes the
// insert the single serialization point for duplicate payment
// confirmations.
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, user_id, college_id, stall_id, total_amount, currency,
			gateway_order_id, gateway_payment_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (gateway_order_id) DO NOTHING
		RETURNING created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, item_id, name, quantity, price_minor)
		VALUES ($1, $2, $3, $4, $5)`

	GetOrderByGatewayOrderIDSQL = `
		SELECT id, user_id, college_id, stall_id, total_amount, currency,
			   gateway_order_id, gateway_payment_id, status, created_at, updated_at
		FROM orders WHERE gateway_order_id = $1`

	GetOrderItemsSQL = `
		SELECT item_id, name, quantity, price_minor
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`
)

// Catalog queries
const (
	GetMenuItemSQL = `
		SELECT id, name, price_minor, is_available, created_at, updated_at
		FROM menu_items
		WHERE college_id = $1 AND stall_id = $2 AND id = $3`

	ListStallMenuSQL = `
		SELECT id, name, price_minor, is_available, created_at, updated_at
		FROM menu_items
		WHERE college_id = $1 AND stall_id = $2 AND is_available = TRUE
		ORDER BY created_at ASC`
)
