package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	authormodel "bookshelf-api/internal/domains/author/model"
	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/infrastructure/metrics"
	"bookshelf-api/pkg/cache"
)

const (
	bookCacheKeyPrefix = "book:"
	cacheTTL           = 15 * time.Minute

	resourceName = "book"

	pgForeignKeyViolation = "23503"
)

const bookColumns = `id, title, cover_text, author_id, created_at, updated_at`

// postgresRepository caches single books without their author: the nested
// author is resolved by the service on every read.
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache *cache.Versioned
}

func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache.NewVersioned(c, bookCacheKeyPrefix, cacheTTL),
	}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Title, &b.CoverText, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) FindAll(ctx context.Context) ([]model.BookWithAuthor, error) {
	query := `
        SELECT b.id, b.title, b.cover_text, b.author_id, b.created_at, b.updated_at,
               a.first_name, a.last_name
        FROM books b
        LEFT JOIN authors a ON a.id = b.author_id
        ORDER BY b.id
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := make([]model.BookWithAuthor, 0)
	for rows.Next() {
		var (
			row       model.BookWithAuthor
			firstName *string
			lastName  *string
		)
		err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.CoverText,
			&row.AuthorID,
			&row.CreatedAt,
			&row.UpdatedAt,
			&firstName,
			&lastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}

		if row.AuthorID != nil && firstName != nil && lastName != nil {
			row.Author = &authormodel.AuthorSummary{
				ID:        *row.AuthorID,
				FirstName: *firstName,
				LastName:  *lastName,
			}
		}
		books = append(books, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	key, err := r.cache.Key(ctx, id)
	if err != nil {
		metrics.RecordCacheLookup(resourceName, metrics.CacheError)
		log.Warn().Err(err).Int64("id", id).Msg("[BOOK] cache generation read failed")
	} else {
		var cached model.Book
		found, err := r.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.RecordCacheLookup(resourceName, metrics.CacheError)
			log.Warn().Err(err).Str("key", key).Msg("[BOOK] cache read failed")
		case found:
			metrics.RecordCacheLookup(resourceName, metrics.CacheHit)
			return &cached, nil
		default:
			metrics.RecordCacheLookup(resourceName, metrics.CacheMiss)
		}
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}

	// key được đọc trước SELECT: nếu có write commit xen giữa thì
	// generation đã tăng và entry này không còn ai đọc tới.
	if key != "" {
		if err := r.cache.Set(ctx, key, b); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[BOOK] cache write failed")
		}
	}

	return b, nil
}

func (r *postgresRepository) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`

	b, err := scanBook(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to lock book %d: %w", id, err)
	}
	return b, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error {
	query := `
        INSERT INTO books (title, cover_text, author_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `

	err := tx.QueryRow(ctx, query, b.Title, b.CoverText, b.AuthorID).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrapWriteError("create book", err)
	}

	metrics.RecordWrite(resourceName, metrics.OpCreate)
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error {
	query := `
        UPDATE books
        SET title = $1,
            cover_text = $2,
            author_id = $3,
            updated_at = NOW()
        WHERE id = $4
        RETURNING updated_at
    `

	err := tx.QueryRow(ctx, query, b.Title, b.CoverText, b.AuthorID, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrBookNotFound
		}
		return wrapWriteError(fmt.Sprintf("update book %d", b.ID), err)
	}

	metrics.RecordWrite(resourceName, metrics.OpUpdate)
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	metrics.RecordWrite(resourceName, metrics.OpDelete)
	return nil
}

func (r *postgresRepository) DetachAuthorWithTx(ctx context.Context, tx pgx.Tx, authorID int64) ([]int64, error) {
	query := `
        UPDATE books
        SET author_id = NULL,
            updated_at = NOW()
        WHERE author_id = $1
        RETURNING id
    `

	rows, err := tx.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to detach books of author %d: %w", authorID, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to detach books of author %d: %w", authorID, err)
	}

	for range ids {
		metrics.RecordWrite(resourceName, metrics.OpUpdate)
	}
	return ids, nil
}

func (r *postgresRepository) InvalidateCache(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}

	if err := r.cache.Invalidate(ctx, ids...); err != nil {
		log.Warn().Err(err).Ints64("ids", ids).Msg("[BOOK] cache invalidation failed")
	}
}

func wrapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, model.ErrAuthorGone)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
