package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medstock/internal/domain"
	"medstock/internal/schema"
)

type MySQLRejectRepository struct {
	db *sql.DB
}

func NewMySQLRejectRepository(db *sql.DB) *MySQLRejectRepository {
	return &MySQLRejectRepository{db: db}
}

// Insert writes a reject record, honoring whether the key is identity and
// whether the reporter column exists in this deployment.
func (r *MySQLRejectRepository) Insert(ctx context.Context, tx *sql.Tx, sch domain.RejectSchema, rej domain.Reject) (int, error) {
	cols := []string{"device_id", "cause", "qty", "reject_date"}
	vals := []string{"?", "?", "?", "?"}
	args := []interface{}{rej.DeviceID, rej.Cause, rej.Qty, rej.Date}

	var assigned int
	if !sch.IdentityKey {
		next, err := schema.NextID(ctx, tx, schema.TableReject, "id")
		if err != nil {
			return 0, err
		}
		assigned = next
		cols = append([]string{"id"}, cols...)
		vals = append([]string{"?"}, vals...)
		args = append([]interface{}{next}, args...)
	}

	if sch.HasReporter {
		cols = append(cols, "reported_by")
		vals = append(vals, "?")
		args = append(args, rej.ReportedBy)
	}

	query := fmt.Sprintf("INSERT INTO Reject (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(vals, ", "))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting reject: %w", err)
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

func (r *MySQLRejectRepository) List(ctx context.Context, sch domain.RejectSchema) ([]domain.Reject, error) {
	reporterExpr := "NULL"
	if sch.HasReporter {
		reporterExpr = "r.reported_by"
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.device_id, d.name, r.cause, r.qty, r.reject_date, %s
		FROM Reject r
		LEFT JOIN MedicalDevice d ON d.id = r.device_id
		ORDER BY r.id DESC
	`, reporterExpr)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rejects: %w", err)
	}
	defer rows.Close()

	var rejects []domain.Reject
	for rows.Next() {
		var rej domain.Reject
		err := rows.Scan(&rej.ID, &rej.DeviceID, &rej.DeviceName, &rej.Cause, &rej.Qty, &rej.Date, &rej.ReportedBy)
		if err != nil {
			return nil, fmt.Errorf("scanning reject row: %w", err)
		}
		rejects = append(rejects, rej)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reject rows: %w", err)
	}

	return rejects, nil
}

func (r *MySQLRejectRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Reject WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting reject: %w", err)
	}

	return result.RowsAffected()
}
