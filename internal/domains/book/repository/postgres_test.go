package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/testutils/memcache"
)

func TestFindByID_CachedRowKeepsAuthorID(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(nil, memcache.New()).(*postgresRepository)
	authorID := int64(3)

	key, err := repo.cache.Key(ctx, 9)
	require.NoError(t, err)
	require.NoError(t, repo.cache.Set(ctx, key, model.Book{ID: 9, Title: "Nana", AuthorID: &authorID}))

	got, err := repo.FindByID(ctx, 9)

	require.NoError(t, err)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, int64(3), *got.AuthorID)
}

func TestInvalidateCache_Many(t *testing.T) {
	c := memcache.New()

	NewPostgresRepository(nil, c).InvalidateCache(context.Background(), 4, 5)

	assert.Equal(t, []string{"book:4:v0", "book:5:v0"}, c.Deleted)
	assert.True(t, c.Has("book:4:gen"))
	assert.True(t, c.Has("book:5:gen"))
}

func TestInvalidateCache_StaleRowWrittenAfterUpdateIsNotServed(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(nil, memcache.New()).(*postgresRepository)

	// reader: key resolved and old row loaded before the update commits
	readerKey, err := repo.cache.Key(ctx, 11)
	require.NoError(t, err)

	repo.InvalidateCache(ctx, 11)
	require.NoError(t, repo.cache.Set(ctx, readerKey, model.Book{ID: 11, Title: "Old title"}))

	key, err := repo.cache.Key(ctx, 11)
	require.NoError(t, err)

	var cached model.Book
	found, err := repo.cache.Get(ctx, key, &cached)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWrapWriteError(t *testing.T) {
	fk := &pgconn.PgError{Code: pgForeignKeyViolation}
	assert.ErrorIs(t, wrapWriteError("create book", fk), model.ErrAuthorGone)

	other := errors.New("connection reset")
	err := wrapWriteError("create book", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, model.ErrAuthorGone)
}
