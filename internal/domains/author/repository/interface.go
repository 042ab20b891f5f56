package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"bookshelf-api/internal/domains/author/model"
)

// RepositoryInterface - data access cho authors.
// Các method *WithTx chạy trong transaction do service mở.
type RepositoryInterface interface {
	FindAll(ctx context.Context) ([]model.Author, error)
	FindByID(ctx context.Context, id int64) (*model.Author, error)

	// FindByIDWithTx khoá row (FOR UPDATE) cho tới khi transaction kết thúc
	FindByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Author, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, a *model.Author) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, a *model.Author) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error

	// InvalidateCache drops cached entries; call it after the commit.
	InvalidateCache(ctx context.Context, ids ...int64)
}
