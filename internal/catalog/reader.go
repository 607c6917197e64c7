package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"campus-canteen/internal/database"
	"campus-canteen/internal/models"
)

// ErrItemNotFound signals that an item id does not resolve under the
// given college/stall scope
var ErrItemNotFound = errors.New("menu item not found")

// Reader is the read path into the menu catalog. The catalog is
// concurrently written by stall staff tooling; no transactional
// guarantee spans multiple item reads.
type Reader interface {
	GetItem(ctx context.Context, collegeID, stallID, itemID string) (models.MenuItem, error)
	ListStallMenu(ctx context.Context, collegeID, stallID string) ([]models.MenuItem, error)
}

// PostgresReader reads the catalog from the menu_items table
type PostgresReader struct {
	db *database.DB
}

// NewPostgresReader creates a catalog reader over the given database
func NewPostgresReader(db *database.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

// GetItem returns a single menu item scoped to a college and stall
func (r *PostgresReader) GetItem(ctx context.Context, collegeID, stallID, itemID string) (models.MenuItem, error) {
	var item models.MenuItem

	err := r.db.QueryRow(ctx, database.GetMenuItemSQL, collegeID, stallID, itemID).
		Scan(&item.ID, &item.Name, &item.PriceMinor, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MenuItem{}, ErrItemNotFound
	}
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to read menu item: %w", err)
	}

	return item, nil
}

// ListStallMenu returns the available items of a stall in catalog order
func (r *PostgresReader) ListStallMenu(ctx context.Context, collegeID, stallID string) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx, database.ListStallMenuSQL, collegeID, stallID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stall menu: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		err := rows.Scan(&item.ID, &item.Name, &item.PriceMinor, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
