package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"medstock/internal/domain"
)

// MySQLStockLedger applies stock mutations uniformly across the storage
// representations the introspector can detect. All methods run inside the
// caller's transaction; decrements are single conditional statements so the
// row lock is the only concurrency control needed.
type MySQLStockLedger struct{}

func NewMySQLStockLedger() *MySQLStockLedger {
	return &MySQLStockLedger{}
}

// IncreaseDeviceStock adds qty to a device's stock. In inventory mode a
// missing row is created with the given quantity and a zero floor.
func (l *MySQLStockLedger) IncreaseDeviceStock(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, deviceID, qty int) error {
	if mode == domain.DeviceStockInventory {
		result, err := tx.ExecContext(ctx, `
			UPDATE Inventory
			SET stock = COALESCE(stock, 0) + ?, updated_at = NOW()
			WHERE device_id = ?
		`, qty, deviceID)
		if err != nil {
			return fmt.Errorf("increasing inventory stock: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}

		if affected == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO Inventory (device_id, stock, min_stock, updated_at)
				VALUES (?, ?, 0, NOW())
			`, deviceID, qty)
			if err != nil {
				return fmt.Errorf("creating inventory row: %w", err)
			}
		}

		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE MedicalDevice
		SET stock = COALESCE(stock, 0) + ?
		WHERE id = ?
	`, qty, deviceID)
	if err != nil {
		return fmt.Errorf("increasing device stock: %w", err)
	}

	return nil
}

// DecreaseDeviceStock decrements only when enough stock remains; the check
// and the write are one statement. It reports false when the guard rejected
// the row, which the orchestrator treats as insufficient stock.
func (l *MySQLStockLedger) DecreaseDeviceStock(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, deviceID, qty int) (bool, error) {
	var query string
	if mode == domain.DeviceStockInventory {
		query = `
			UPDATE Inventory
			SET stock = stock - ?, updated_at = NOW()
			WHERE device_id = ? AND stock >= ?
		`
	} else {
		query = `
			UPDATE MedicalDevice
			SET stock = stock - ?
			WHERE id = ? AND COALESCE(stock, 0) >= ?
		`
	}

	result, err := tx.ExecContext(ctx, query, qty, deviceID, qty)
	if err != nil {
		return false, fmt.Errorf("decreasing device stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected > 0, nil
}

// IncreaseMaterialStock mirrors IncreaseDeviceStock for materials. A no-op
// when material stock is untracked.
func (l *MySQLStockLedger) IncreaseMaterialStock(ctx context.Context, tx *sql.Tx, mode domain.MaterialStockMode, materialID, qty int) error {
	switch mode {
	case domain.MaterialStockNone:
		return nil
	case domain.MaterialStockInventory:
		result, err := tx.ExecContext(ctx, `
			UPDATE MaterialInventory
			SET stock = COALESCE(stock, 0) + ?, updated_at = NOW()
			WHERE material_id = ?
		`, qty, materialID)
		if err != nil {
			return fmt.Errorf("increasing material inventory stock: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}

		if affected == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO MaterialInventory (material_id, stock, updated_at)
				VALUES (?, ?, NOW())
			`, materialID, qty)
			if err != nil {
				return fmt.Errorf("creating material inventory row: %w", err)
			}
		}

		return nil
	default:
		_, err := tx.ExecContext(ctx, `
			UPDATE Material
			SET stock = COALESCE(stock, 0) + ?
			WHERE id = ?
		`, qty, materialID)
		if err != nil {
			return fmt.Errorf("increasing material stock: %w", err)
		}

		return nil
	}
}

// DecreaseMaterialStock is the conditional decrement for materials. When
// material stock is untracked it always reports success without touching
// anything.
func (l *MySQLStockLedger) DecreaseMaterialStock(ctx context.Context, tx *sql.Tx, mode domain.MaterialStockMode, materialID, qty int) (bool, error) {
	var query string
	switch mode {
	case domain.MaterialStockNone:
		return true, nil
	case domain.MaterialStockInventory:
		query = `
			UPDATE MaterialInventory
			SET stock = stock - ?, updated_at = NOW()
			WHERE material_id = ? AND stock >= ?
		`
	default:
		query = `
			UPDATE Material
			SET stock = stock - ?
			WHERE id = ? AND COALESCE(stock, 0) >= ?
		`
	}

	result, err := tx.ExecContext(ctx, query, qty, materialID, qty)
	if err != nil {
		return false, fmt.Errorf("decreasing material stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected > 0, nil
}
