package commons

import (
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	apperrors "medstock/internal/errors"
)

// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms).
var backoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// WithDeadlockRetry runs fn up to maxAttempts times, retrying only when the
// datastore reports a deadlock or lock-wait timeout. Every other error is
// returned as-is on the first occurrence.
func WithDeadlockRetry[T any](logger *zap.Logger, maxAttempts int, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !IsDeadlockError(err) {
			return zero, err
		}

		if attempt < maxAttempts {
			idx := attempt - 1
			if idx >= len(backoffs) {
				idx = len(backoffs) - 1
			}
			// Jitter: +-20% of the backoff base.
			jitter := time.Duration(float64(backoffs[idx]) * (0.8 + rand.Float64()*0.4))
			time.Sleep(jitter)
			logger.Warn("deadlock detected, retrying",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
			)
		}
	}

	return zero, apperrors.NewDeadlockError("max retries exceeded")
}

func IsDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

// IsForeignKeyViolation matches MySQL errors 1451/1452, raised when a delete
// or insert breaks referential integrity.
func IsForeignKeyViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1451 || mysqlErr.Number == 1452
	}
	return false
}
