package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type MySQLStaffRepository struct {
	db *sql.DB
}

func NewMySQLStaffRepository(db *sql.DB) *MySQLStaffRepository {
	return &MySQLStaffRepository{db: db}
}

func (r *MySQLStaffRepository) Exists(ctx context.Context, tx *sql.Tx, id int) (bool, error) {
	query := `SELECT 1 FROM Staff WHERE id = ?`

	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking staff %d: %w", id, err)
	}

	return true, nil
}
