package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"bookshelf-api/internal/domains/author/model"
	"bookshelf-api/internal/infrastructure/metrics"
	"bookshelf-api/pkg/cache"
)

const (
	authorCacheKeyPrefix = "author:"
	cacheTTL             = 15 * time.Minute

	resourceName = "author"
)

const authorColumns = `id, first_name, last_name, created_at, updated_at`

// postgresRepository implements RepositoryInterface.
// Reads by id go through the cache, lists always hit PostgreSQL.
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache *cache.Versioned
}

func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache.NewVersioned(c, authorCacheKeyPrefix, cacheTTL),
	}
}

func scanAuthor(row pgx.Row) (*model.Author, error) {
	var a model.Author
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]model.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := make([]model.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}

	return authors, nil
}

// FindByID: cache trước, miss thì query DB rồi ghi lại cache
func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.Author, error) {
	key, err := r.cache.Key(ctx, id)
	if err != nil {
		metrics.RecordCacheLookup(resourceName, metrics.CacheError)
		log.Warn().Err(err).Int64("id", id).Msg("[AUTHOR] cache generation read failed")
	} else {
		var cached model.Author
		found, err := r.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.RecordCacheLookup(resourceName, metrics.CacheError)
			log.Warn().Err(err).Str("key", key).Msg("[AUTHOR] cache read failed")
		case found:
			metrics.RecordCacheLookup(resourceName, metrics.CacheHit)
			return &cached, nil
		default:
			metrics.RecordCacheLookup(resourceName, metrics.CacheMiss)
		}
	}

	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	a, err := scanAuthor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author %d: %w", id, err)
	}

	// key được đọc trước SELECT: nếu có write commit xen giữa thì
	// generation đã tăng và entry này không còn ai đọc tới.
	if key != "" {
		if err := r.cache.Set(ctx, key, a); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[AUTHOR] cache write failed")
		}
	}

	return a, nil
}

func (r *postgresRepository) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1 FOR UPDATE`

	a, err := scanAuthor(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to lock author %d: %w", id, err)
	}
	return a, nil
}

// CreateWithTx inserts a and fills in ID and timestamps.
func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, a *model.Author) error {
	query := `
        INSERT INTO authors (first_name, last_name)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at
    `

	err := tx.QueryRow(ctx, query, a.FirstName, a.LastName).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}

	metrics.RecordWrite(resourceName, metrics.OpCreate)
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, a *model.Author) error {
	query := `
        UPDATE authors
        SET first_name = $1,
            last_name = $2,
            updated_at = NOW()
        WHERE id = $3
        RETURNING updated_at
    `

	err := tx.QueryRow(ctx, query, a.FirstName, a.LastName, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrAuthorNotFound
		}
		return fmt.Errorf("failed to update author %d: %w", a.ID, err)
	}

	metrics.RecordWrite(resourceName, metrics.OpUpdate)
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete author %d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}

	metrics.RecordWrite(resourceName, metrics.OpDelete)
	return nil
}

func (r *postgresRepository) InvalidateCache(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}

	if err := r.cache.Invalidate(ctx, ids...); err != nil {
		log.Warn().Err(err).Ints64("ids", ids).Msg("[AUTHOR] cache invalidation failed")
	}
}
