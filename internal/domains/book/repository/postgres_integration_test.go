//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authormodel "bookshelf-api/internal/domains/author/model"
	authorrepo "bookshelf-api/internal/domains/author/repository"
	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/internal/testutils"
	"bookshelf-api/pkg/cache"
	"bookshelf-api/pkg/database"
)

func TestPostgresRepositories(t *testing.T) {
	pool := testutils.StartPostgres(t)
	ctx := context.Background()
	tm := database.NewTransactionManager(pool)
	authors := authorrepo.NewPostgresRepository(pool, cache.NewNoop())
	books := repository.NewPostgresRepository(pool, cache.NewNoop())

	zola := &authormodel.Author{FirstName: "Émile", LastName: "Zola"}
	nana := &model.Book{Title: "Nana", CoverText: "roman"}
	orphan := &model.Book{Title: "Anonyme"}

	require.NoError(t, tm.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := authors.CreateWithTx(ctx, tx, zola); err != nil {
			return err
		}
		nana.AuthorID = &zola.ID
		if err := books.CreateWithTx(ctx, tx, nana); err != nil {
			return err
		}
		return books.CreateWithTx(ctx, tx, orphan)
	}))
	require.NotZero(t, zola.ID)
	require.NotZero(t, nana.ID)

	t.Run("find all joins authors", func(t *testing.T) {
		rows, err := books.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, &authormodel.AuthorSummary{ID: zola.ID, FirstName: "Émile", LastName: "Zola"}, rows[0].Author)
		assert.Nil(t, rows[1].Author)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := books.FindByID(ctx, nana.ID)
		require.NoError(t, err)
		assert.Equal(t, "roman", got.CoverText)
		require.NotNil(t, got.AuthorID)
		assert.Equal(t, zola.ID, *got.AuthorID)

		_, err = books.FindByID(ctx, 999999)
		assert.ErrorIs(t, err, model.ErrBookNotFound)
	})

	t.Run("unknown author violates foreign key", func(t *testing.T) {
		missing := int64(424242)
		err := tm.WithinTransaction(ctx, func(tx pgx.Tx) error {
			return books.CreateWithTx(ctx, tx, &model.Book{Title: "x", AuthorID: &missing})
		})
		assert.ErrorIs(t, err, model.ErrAuthorGone)
	})

	t.Run("rollback leaves nothing behind", func(t *testing.T) {
		err := tm.WithinTransaction(ctx, func(tx pgx.Tx) error {
			if err := books.CreateWithTx(ctx, tx, &model.Book{Title: "éphémère"}); err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		rows, err := books.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("delete author detaches books", func(t *testing.T) {
		var detached []int64
		require.NoError(t, tm.WithinTransaction(ctx, func(tx pgx.Tx) error {
			var err error
			if detached, err = books.DetachAuthorWithTx(ctx, tx, zola.ID); err != nil {
				return err
			}
			return authors.DeleteWithTx(ctx, tx, zola.ID)
		}))
		assert.Equal(t, []int64{nana.ID}, detached)

		got, err := books.FindByID(ctx, nana.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AuthorID)

		_, err = authors.FindByID(ctx, zola.ID)
		assert.ErrorIs(t, err, authormodel.ErrAuthorNotFound)
	})

	t.Run("delete missing book", func(t *testing.T) {
		err := tm.WithinTransaction(ctx, func(tx pgx.Tx) error {
			return books.DeleteWithTx(ctx, tx, 999999)
		})
		assert.ErrorIs(t, err, model.ErrBookNotFound)
	})
}
