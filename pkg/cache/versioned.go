package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// generationTTL phải dài hơn nhiều so với TTL của entry: khi counter hết hạn
// nó quay về 0 và các entry cũ ở generation 0 đã expire từ lâu.
const generationTTL = 24 * time.Hour

// Versioned caches one record per id under a key that embeds the id's
// generation ("book:7:v3"). Invalidate bumps the generation, so a reader
// that loaded the row before the write stores it under a key no later
// reader looks up.
type Versioned struct {
	cache  Cache
	prefix string
	ttl    time.Duration
}

func NewVersioned(c Cache, prefix string, ttl time.Duration) *Versioned {
	return &Versioned{cache: c, prefix: prefix, ttl: ttl}
}

func (v *Versioned) GenerationKey(id int64) string {
	return v.prefix + strconv.FormatInt(id, 10) + ":gen"
}

func (v *Versioned) EntryKey(id, generation int64) string {
	return v.prefix + strconv.FormatInt(id, 10) + ":v" + strconv.FormatInt(generation, 10)
}

// Key resolves the entry key for id at its current generation.
// Callers must read the key before loading the row from the database.
func (v *Versioned) Key(ctx context.Context, id int64) (string, error) {
	var generation int64
	if _, err := v.cache.Get(ctx, v.GenerationKey(id), &generation); err != nil {
		return "", fmt.Errorf("read generation of %s%d: %w", v.prefix, id, err)
	}
	return v.EntryKey(id, generation), nil
}

func (v *Versioned) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return v.cache.Get(ctx, key, dest)
}

func (v *Versioned) Set(ctx context.Context, key string, value interface{}) error {
	return v.cache.Set(ctx, key, value, v.ttl)
}

// Invalidate bumps the generation of every id, then drops the entry that
// was current before the bump.
func (v *Versioned) Invalidate(ctx context.Context, ids ...int64) error {
	var errs []error
	stale := make([]string, 0, len(ids))

	for _, id := range ids {
		generation, err := v.cache.Incr(ctx, v.GenerationKey(id), generationTTL)
		if err != nil {
			errs = append(errs, fmt.Errorf("bump generation of %s%d: %w", v.prefix, id, err))
			continue
		}
		if generation > 0 {
			stale = append(stale, v.EntryKey(id, generation-1))
		}
	}

	if len(stale) > 0 {
		if err := v.cache.Delete(ctx, stale...); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
