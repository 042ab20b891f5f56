package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"bookshelf-api/internal/domains/book/model"
)

// RepositoryInterface - data access cho books
type RepositoryInterface interface {
	// FindAll trả về books kèm author (LEFT JOIN), sắp xếp theo id
	FindAll(ctx context.Context) ([]model.BookWithAuthor, error)
	FindByID(ctx context.Context, id int64) (*model.Book, error)

	FindByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error

	// DetachAuthorWithTx nulls author_id on every book of authorID and
	// returns the ids it touched.
	DetachAuthorWithTx(ctx context.Context, tx pgx.Tx, authorID int64) ([]int64, error)

	InvalidateCache(ctx context.Context, ids ...int64)
}
