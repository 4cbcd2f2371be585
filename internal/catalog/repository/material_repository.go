package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type MySQLMaterialRepository struct {
	db *sql.DB
}

func NewMySQLMaterialRepository(db *sql.DB) *MySQLMaterialRepository {
	return &MySQLMaterialRepository{db: db}
}

func (r *MySQLMaterialRepository) Exists(ctx context.Context, tx *sql.Tx, id int) (bool, error) {
	query := `SELECT 1 FROM Material WHERE id = ?`

	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking material %d: %w", id, err)
	}

	return true, nil
}
