package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// NextID computes the next primary key for tables whose key is not
// auto-generated. It must run inside the same transaction as the insert so
// that two concurrent writers conflict at commit instead of silently
// assigning the same key. An empty table yields 1.
func NextID(ctx context.Context, tx *sql.Tx, table, idColumn string) (int, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", idColumn, table)

	var next int
	if err := tx.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("computing next id for %s: %w", table, err)
	}

	return next, nil
}
