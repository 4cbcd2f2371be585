package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medstock/internal/domain"
	"medstock/internal/schema"
)

type MySQLAssemblyRepository struct {
	db *sql.DB
}

func NewMySQLAssemblyRepository(db *sql.DB) *MySQLAssemblyRepository {
	return &MySQLAssemblyRepository{db: db}
}

// InsertHeader writes the assembly header using only the columns this
// deployment has. Non-identity schemas get their key assigned max+1 inside
// the same transaction.
func (r *MySQLAssemblyRepository) InsertHeader(ctx context.Context, tx *sql.Tx, sch domain.AssemblySchema, a domain.NewAssembly) (int, error) {
	var cols []string
	var vals []string
	var args []interface{}

	var assigned int
	if !sch.IdentityKey {
		next, err := schema.NextID(ctx, tx, schema.TableAssembly, "id")
		if err != nil {
			return 0, err
		}
		assigned = next
		cols = append(cols, "id")
		vals = append(vals, "?")
		args = append(args, next)
	}

	if sch.HasDeviceID && a.DeviceID != nil {
		cols = append(cols, "device_id")
		vals = append(vals, "?")
		args = append(args, *a.DeviceID)
	}
	if sch.HasProduct && a.Product != nil {
		cols = append(cols, "product")
		vals = append(vals, "?")
		args = append(args, *a.Product)
	}
	if sch.HasComponents && a.Components != nil {
		cols = append(cols, "components")
		vals = append(vals, "?")
		args = append(args, *a.Components)
	}
	if sch.HasDate && a.Date != nil {
		cols = append(cols, "event_date")
		vals = append(vals, "?")
		args = append(args, *a.Date)
	}
	if sch.HasResponsible && a.Responsible != nil {
		cols = append(cols, "responsible")
		vals = append(vals, "?")
		args = append(args, *a.Responsible)
	}

	query := fmt.Sprintf("INSERT INTO Assembly (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(vals, ", "))
	if len(cols) == 0 {
		query = "INSERT INTO Assembly () VALUES ()"
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting assembly header: %w", err)
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

func (r *MySQLAssemblyRepository) InsertLine(ctx context.Context, tx *sql.Tx, assemblyID int, line domain.AssemblyLine) error {
	query := `INSERT INTO AssemblyDetail (assembly_id, material_id, qty) VALUES (?, ?, ?)`

	_, err := tx.ExecContext(ctx, query, assemblyID, line.MaterialID, line.Qty)
	if err != nil {
		return fmt.Errorf("inserting assembly line: %w", err)
	}

	return nil
}

// BOMLines expands the device's bill of materials scaled by the requested
// production quantity. A device without BOM rows yields an empty list.
func (r *MySQLAssemblyRepository) BOMLines(ctx context.Context, tx *sql.Tx, deviceID, productionQty int) ([]domain.AssemblyLine, error) {
	query := `SELECT material_id, qty_per_unit FROM ProductBOM WHERE device_id = ?`

	rows, err := tx.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("querying BOM: %w", err)
	}
	defer rows.Close()

	var lines []domain.AssemblyLine
	for rows.Next() {
		var materialID, qtyPerUnit int
		if err := rows.Scan(&materialID, &qtyPerUnit); err != nil {
			return nil, fmt.Errorf("scanning BOM row: %w", err)
		}
		lines = append(lines, domain.AssemblyLine{
			MaterialID: materialID,
			Qty:        qtyPerUnit * productionQty,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating BOM rows: %w", err)
	}

	return lines, nil
}

func (r *MySQLAssemblyRepository) CountLines(ctx context.Context, assemblyID int) (int, error) {
	query := `SELECT COUNT(1) FROM AssemblyDetail WHERE assembly_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, assemblyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting assembly lines: %w", err)
	}

	return count, nil
}

func (r *MySQLAssemblyRepository) DeleteLines(ctx context.Context, tx *sql.Tx, assemblyID int) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM AssemblyDetail WHERE assembly_id = ?`, assemblyID)
	if err != nil {
		return fmt.Errorf("deleting assembly lines: %w", err)
	}

	return nil
}

func (r *MySQLAssemblyRepository) DeleteHeader(ctx context.Context, tx *sql.Tx, assemblyID int) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM Assembly WHERE id = ?`, assemblyID)
	if err != nil {
		return 0, fmt.Errorf("deleting assembly header: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected, nil
}

// DeleteHeaderDirect deletes without touching the lines; the caller maps a
// foreign-key violation to a referential conflict.
func (r *MySQLAssemblyRepository) DeleteHeaderDirect(ctx context.Context, assemblyID int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Assembly WHERE id = ?`, assemblyID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// List builds the read query around the columns that exist: the product name
// comes from the header or the device join, the components description from
// the header or an aggregate over the lines.
func (r *MySQLAssemblyRepository) List(ctx context.Context, sch domain.AssemblySchema) ([]domain.AssemblySummary, error) {
	productExpr := "NULL"
	if sch.HasProduct {
		productExpr = "a.product"
	} else if sch.HasDeviceID {
		productExpr = "d.name"
	}

	componentsExpr := `(
		SELECT GROUP_CONCAT(CONCAT(COALESCE(m.name, CONCAT('Mat:', ad.material_id)), ' x', ad.qty) SEPARATOR ', ')
		FROM AssemblyDetail ad
		LEFT JOIN Material m ON m.id = ad.material_id
		WHERE ad.assembly_id = a.id
	)`
	if sch.HasComponents {
		componentsExpr = "a.components"
	}

	dateExpr := "NULL"
	if sch.HasDate {
		dateExpr = "a.event_date"
	}

	responsibleExpr := "NULL"
	if sch.HasResponsible {
		responsibleExpr = "a.responsible"
	}

	from := "FROM Assembly a"
	if sch.HasDeviceID {
		from = "FROM Assembly a LEFT JOIN MedicalDevice d ON d.id = a.device_id"
	}

	query := fmt.Sprintf(`
		SELECT a.id, %s, %s, %s, %s,
		       (SELECT COUNT(1) FROM AssemblyDetail ad WHERE ad.assembly_id = a.id)
		%s
		ORDER BY a.id DESC
	`, productExpr, componentsExpr, dateExpr, responsibleExpr, from)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying assemblies: %w", err)
	}
	defer rows.Close()

	var summaries []domain.AssemblySummary
	for rows.Next() {
		var s domain.AssemblySummary
		err := rows.Scan(&s.ID, &s.Product, &s.Components, &s.Date, &s.Responsible, &s.LineCount)
		if err != nil {
			return nil, fmt.Errorf("scanning assembly row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assembly rows: %w", err)
	}

	return summaries, nil
}
