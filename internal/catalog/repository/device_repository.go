package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"medstock/internal/domain"
	"medstock/internal/errors"
)

type MySQLDeviceRepository struct {
	db *sql.DB
}

func NewMySQLDeviceRepository(db *sql.DB) *MySQLDeviceRepository {
	return &MySQLDeviceRepository{db: db}
}

// ResolveRef turns a device reference into a device id. A value whose string
// form round-trips through integer parsing is already an id; anything else
// is an exact-name lookup. An unknown name is a NotFoundError, which callers
// surface as client input, not a server fault.
func (r *MySQLDeviceRepository) ResolveRef(ctx context.Context, tx *sql.Tx, ref string) (int, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return 0, errors.NewNotFoundError("empty device reference")
	}

	if id, err := strconv.Atoi(trimmed); err == nil && strconv.Itoa(id) == trimmed {
		return id, nil
	}

	query := `SELECT id FROM MedicalDevice WHERE name = ? LIMIT 1`

	var id int
	err := tx.QueryRowContext(ctx, query, trimmed).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.NewNotFoundError(fmt.Sprintf("device %q not found", trimmed))
	}
	if err != nil {
		return 0, fmt.Errorf("resolving device by name: %w", err)
	}

	return id, nil
}

// QuoteForSale reads the device's catalog price and its effective stock
// under the active storage profile.
func (r *MySQLDeviceRepository) QuoteForSale(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, id int) (*domain.DeviceQuote, error) {
	var query string
	if mode == domain.DeviceStockInventory {
		query = `
			SELECT d.id, d.name, d.price, COALESCE(i.stock, 0)
			FROM MedicalDevice d
			LEFT JOIN Inventory i ON i.device_id = d.id
			WHERE d.id = ?
		`
	} else {
		query = `
			SELECT id, name, price, COALESCE(stock, 0)
			FROM MedicalDevice
			WHERE id = ?
		`
	}

	var quote domain.DeviceQuote
	err := tx.QueryRowContext(ctx, query, id).Scan(&quote.ID, &quote.Name, &quote.Price, &quote.Stock)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("device with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying device quote: %w", err)
	}

	return &quote, nil
}
