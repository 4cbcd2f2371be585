package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medstock/internal/domain"
	"medstock/internal/schema"
)

type MySQLSaleRepository struct {
	db *sql.DB
}

func NewMySQLSaleRepository(db *sql.DB) *MySQLSaleRepository {
	return &MySQLSaleRepository{db: db}
}

// InsertHeader writes the sale header. Total and staff columns are written
// only when the schema has them; non-identity keys are assigned max+1 inside
// the transaction.
func (r *MySQLSaleRepository) InsertHeader(ctx context.Context, tx *sql.Tx, sch domain.SaleSchema, s domain.NewSale) (int, error) {
	cols := []string{"sale_date", "customer"}
	vals := []string{"?", "?"}
	args := []interface{}{s.Date, s.Customer}

	var assigned int
	if !sch.IdentityKey {
		next, err := schema.NextID(ctx, tx, schema.TableSaleHeader, "id")
		if err != nil {
			return 0, err
		}
		assigned = next
		cols = append([]string{"id"}, cols...)
		vals = append([]string{"?"}, vals...)
		args = append([]interface{}{next}, args...)
	}

	if sch.HasStaffID {
		cols = append(cols, "staff_id")
		vals = append(vals, "?")
		args = append(args, s.StaffID)
	}
	if sch.HasTotal {
		cols = append(cols, "total")
		vals = append(vals, "?")
		args = append(args, s.Total)
	}

	query := fmt.Sprintf("INSERT INTO SaleHeader (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(vals, ", "))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting sale header: %w", err)
	}

	if !sch.IdentityKey {
		return assigned, nil
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLSaleRepository) InsertLine(ctx context.Context, tx *sql.Tx, saleID int, line domain.SaleLine) error {
	query := `INSERT INTO SaleDetail (sale_id, device_id, qty, unit_price) VALUES (?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query, saleID, line.DeviceID, line.Qty, line.UnitPrice)
	if err != nil {
		return fmt.Errorf("inserting sale line: %w", err)
	}

	return nil
}

// ConsumedLines reads what the sale took out of stock, for restocking on
// delete.
func (r *MySQLSaleRepository) ConsumedLines(ctx context.Context, tx *sql.Tx, saleID int) ([]domain.ConsumedLine, error) {
	query := `SELECT device_id, qty FROM SaleDetail WHERE sale_id = ?`

	rows, err := tx.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("querying sale lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.ConsumedLine
	for rows.Next() {
		var l domain.ConsumedLine
		if err := rows.Scan(&l.DeviceID, &l.Qty); err != nil {
			return nil, fmt.Errorf("scanning sale line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale lines: %w", err)
	}

	return lines, nil
}

func (r *MySQLSaleRepository) DeleteLines(ctx context.Context, tx *sql.Tx, saleID int) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM SaleDetail WHERE sale_id = ?`, saleID)
	if err != nil {
		return fmt.Errorf("deleting sale lines: %w", err)
	}

	return nil
}

func (r *MySQLSaleRepository) DeleteHeader(ctx context.Context, tx *sql.Tx, saleID int) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM SaleHeader WHERE id = ?`, saleID)
	if err != nil {
		return 0, fmt.Errorf("deleting sale header: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected, nil
}

// List returns sales with their totals: the stored column when the schema
// persists it, a sum over the lines otherwise.
func (r *MySQLSaleRepository) List(ctx context.Context, sch domain.SaleSchema) ([]domain.SaleSummary, error) {
	totalExpr := "COALESCE(SUM(d.qty * d.unit_price), 0)"
	groupExtra := ""
	if sch.HasTotal {
		totalExpr = "h.total"
		groupExtra = ", h.total"
	}

	staffExpr := "NULL"
	if sch.HasStaffID {
		staffExpr = "h.staff_id"
		groupExtra += ", h.staff_id"
	}

	query := fmt.Sprintf(`
		SELECT h.id, h.sale_date, h.customer, %s, %s, COALESCE(SUM(d.qty), 0)
		FROM SaleHeader h
		LEFT JOIN SaleDetail d ON d.sale_id = h.id
		GROUP BY h.id, h.sale_date, h.customer%s
		ORDER BY h.id DESC
	`, staffExpr, totalExpr, groupExtra)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}
	defer rows.Close()

	var summaries []domain.SaleSummary
	for rows.Next() {
		var s domain.SaleSummary
		var staffID sql.NullInt64
		err := rows.Scan(&s.ID, &s.Date, &s.Customer, &staffID, &s.Total, &s.Items)
		if err != nil {
			return nil, fmt.Errorf("scanning sale row: %w", err)
		}
		if staffID.Valid {
			v := int(staffID.Int64)
			s.StaffID = &v
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return summaries, nil
}
