package service

import (
	"context"

	"bookshelf-api/internal/domains/book/model"
)

// ServiceInterface - business logic cho books
type ServiceInterface interface {
	List(ctx context.Context) ([]model.BookSummary, error)
	GetByID(ctx context.Context, id int64) (*model.BookSummary, error)
	Create(ctx context.Context, req model.BookPayload) (*model.BookSummary, error)
	Update(ctx context.Context, id int64, req model.BookPayload) error
	Delete(ctx context.Context, id int64) error
}
