package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-api/internal/testutils/memcache"
	"bookshelf-api/pkg/cache"
)

type row struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestVersioned_Keys(t *testing.T) {
	v := cache.NewVersioned(memcache.New(), "author:", time.Minute)

	assert.Equal(t, "author:5:gen", v.GenerationKey(5))
	assert.Equal(t, "author:5:v2", v.EntryKey(5, 2))
}

func TestVersioned_InvalidateBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	c := memcache.New()
	v := cache.NewVersioned(c, "book:", time.Minute)

	before, err := v.Key(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, v.Set(ctx, before, row{ID: 1, Name: "before"}))

	require.NoError(t, v.Invalidate(ctx, 1))

	after, err := v.Key(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "book:1:v0", before)
	assert.Equal(t, "book:1:v1", after)
	assert.False(t, c.Has(before))

	// late write under the old key from a read that started before the bump
	require.NoError(t, v.Set(ctx, before, row{ID: 1, Name: "stale"}))

	var got row
	found, err := v.Get(ctx, after, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVersioned_NoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVersioned(cache.NewNoop(), "book:", time.Minute)

	key, err := v.Key(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, v.Set(ctx, key, row{ID: 1}))
	require.NoError(t, v.Invalidate(ctx, 1))

	var got row
	found, err := v.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

type brokenCache struct{ cache.Noop }

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenCache) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestVersioned_Errors(t *testing.T) {
	ctx := context.Background()
	v := cache.NewVersioned(brokenCache{}, "book:", time.Minute)

	_, err := v.Key(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, v.Invalidate(ctx, 1, 2))
}
