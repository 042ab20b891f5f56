package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// TxFunc là function type được execute trong transaction
type TxFunc func(pgx.Tx) error

// WithTransaction wraps một function trong transaction.
// Rollback nếu fn trả về error hoặc panic, commit nếu thành công.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		} else if err != nil {
			rollback(ctx, tx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult chạy fn trong transaction của tm và trả về kết quả.
// Lỗi thì trả zero value, kết quả dở dang không lọt ra ngoài.
func WithTransactionResult[T any](ctx context.Context, tm TransactionManager, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T

	err := tm.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Error().Err(err).Msg("[DATABASE] transaction rollback failed")
	}
}

// TransactionManager runs a unit of work in one transaction.
// Services depend on this instead of the pool so tests can substitute it.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn TxFunc) error
}

type poolTransactionManager struct {
	pool *pgxpool.Pool
}

func NewTransactionManager(pool *pgxpool.Pool) TransactionManager {
	return &poolTransactionManager{pool: pool}
}

func (m *poolTransactionManager) WithinTransaction(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, m.pool, fn)
}
