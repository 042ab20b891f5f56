package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTxManager struct {
	calls int
}

func (m *recordingTxManager) WithinTransaction(_ context.Context, fn TxFunc) error {
	m.calls++
	return fn(nil)
}

func TestWithTransactionResult(t *testing.T) {
	tm := &recordingTxManager{}

	got, err := WithTransactionResult(context.Background(), tm, func(pgx.Tx) ([]int64, error) {
		return []int64{1, 2}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
	assert.Equal(t, 1, tm.calls)
}

func TestWithTransactionResult_ErrorReturnsZeroValue(t *testing.T) {
	boom := errors.New("boom")

	got, err := WithTransactionResult(context.Background(), &recordingTxManager{}, func(pgx.Tx) ([]int64, error) {
		return []int64{1}, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

type failingTxManager struct {
	errs  []error
	calls int
}

func (m *failingTxManager) WithinTransaction(_ context.Context, fn TxFunc) error {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return fn(nil)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&pgconn.PgError{Code: pgDeadlockDetected}))
	assert.True(t, IsTransient(fmt.Errorf("update book: %w", &pgconn.PgError{Code: pgSerializationFailure})))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
}

func TestWithRetry(t *testing.T) {
	deadlock := &pgconn.PgError{Code: pgDeadlockDetected}

	t.Run("retries transient failure", func(t *testing.T) {
		tm := &failingTxManager{errs: []error{deadlock}}
		ran := false

		err := WithRetry(context.Background(), tm, 2, IsTransient, func(pgx.Tx) error {
			ran = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, 2, tm.calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		tm := &failingTxManager{errs: []error{deadlock, deadlock, deadlock}}

		err := WithRetry(context.Background(), tm, 2, IsTransient, func(pgx.Tx) error { return nil })

		assert.ErrorIs(t, err, deadlock)
		assert.Equal(t, 2, tm.calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		boom := errors.New("boom")
		tm := &failingTxManager{errs: []error{boom}}

		err := WithRetry(context.Background(), tm, 3, IsTransient, func(pgx.Tx) error { return nil })

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, tm.calls)
	})
}
