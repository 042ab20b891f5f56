package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"bookshelf-api/internal/domains/author/model"
)

// ServiceInterface - business logic cho authors
type ServiceInterface interface {
	List(ctx context.Context) ([]model.AuthorSummary, error)
	GetByID(ctx context.Context, id int64) (*model.AuthorSummary, error)
	Create(ctx context.Context, req model.AuthorPayload) (*model.AuthorSummary, error)
	Update(ctx context.Context, id int64, req model.AuthorPayload) error
	Delete(ctx context.Context, id int64) error
}

// BookDetacher unlinks books from an author being deleted.
// The book repository satisfies it.
type BookDetacher interface {
	DetachAuthorWithTx(ctx context.Context, tx pgx.Tx, authorID int64) ([]int64, error)
	InvalidateCache(ctx context.Context, ids ...int64)
}
