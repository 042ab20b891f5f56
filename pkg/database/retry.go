package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsTransient reports whether PostgreSQL aborted the transaction in a way
// that a fresh attempt can succeed (deadlock, serialization failure).
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgDeadlockDetected || pgErr.Code == pgSerializationFailure
}

// WithRetry runs fn through tm up to attempts times, starting over while
// retry(err) is true. Each attempt is its own transaction.
func WithRetry(ctx context.Context, tm TransactionManager, attempts int, retry func(error) bool, fn TxFunc) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = tm.WithinTransaction(ctx, fn)
		if err == nil || !retry(err) || ctx.Err() != nil {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("[DATABASE] transaction aborted, retrying")
	}
	return err
}
