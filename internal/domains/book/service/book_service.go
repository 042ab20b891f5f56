package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	authormodel "bookshelf-api/internal/domains/author/model"
	authorrepo "bookshelf-api/internal/domains/author/repository"
	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/pkg/database"
)

// writeAttempts: lần thứ hai resolve lại author nếu nó bị xoá giữa chừng.
const writeAttempts = 2

type bookService struct {
	repo      repository.RepositoryInterface
	authors   authorrepo.RepositoryInterface
	txManager database.TransactionManager
}

func NewBookService(
	repo repository.RepositoryInterface,
	authors authorrepo.RepositoryInterface,
	txManager database.TransactionManager,
) ServiceInterface {
	return &bookService{
		repo:      repo,
		authors:   authors,
		txManager: txManager,
	}
}

func (s *bookService) List(ctx context.Context) ([]model.BookSummary, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.BookSummary, len(rows))
	for i := range rows {
		out[i] = rows[i].ToSummary()
	}
	return out, nil
}

// GetByID loads the book (cached) then its author (cached).
func (s *bookService) GetByID(ctx context.Context, id int64) (*model.BookSummary, error) {
	if id <= 0 {
		return nil, model.ErrBookNotFound
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var author *authormodel.AuthorSummary
	if b.AuthorID != nil {
		a, err := s.authors.FindByID(ctx, *b.AuthorID)
		switch {
		case err == nil:
			summary := a.ToSummary()
			author = &summary
		case errors.Is(err, authormodel.ErrAuthorNotFound):
			// author đã bị xoá sau khi book được cache
			s.repo.InvalidateCache(ctx, id)
		default:
			return nil, err
		}
	}

	summary := b.ToSummary(author)
	return &summary, nil
}

// Create validates the book, then resolves idAuthor and inserts in one
// transaction. An idAuthor that matches nothing leaves the book unlinked.
func (s *bookService) Create(ctx context.Context, req model.BookPayload) (*model.BookSummary, error) {
	b := &model.Book{}
	req.ApplyTo(b)

	if err := b.Validate(); err != nil {
		return nil, err
	}

	var author *authormodel.AuthorSummary
	err := database.WithRetry(ctx, s.txManager, writeAttempts, retryWrite, func(tx pgx.Tx) error {
		var err error
		author, err = s.resolveAuthor(ctx, tx, req.AuthorRef())
		if err != nil {
			return err
		}
		b.AuthorID = authorID(author)

		return s.repo.CreateWithTx(ctx, tx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	log.Info().Int64("book_id", b.ID).Interface("author_id", b.AuthorID).Msg("[BOOK] created")

	summary := b.ToSummary(author)
	return &summary, nil
}

// Update applies the body, validates, then re-resolves idAuthor. A body
// without idAuthor therefore unlinks the book.
// Author được lock trước book, cùng thứ tự với author Delete.
func (s *bookService) Update(ctx context.Context, id int64, req model.BookPayload) error {
	if id <= 0 {
		return model.ErrBookNotFound
	}

	err := database.WithRetry(ctx, s.txManager, writeAttempts, retryWrite, func(tx pgx.Tx) error {
		author, err := s.resolveAuthor(ctx, tx, req.AuthorRef())
		if err != nil {
			return err
		}

		b, err := s.repo.FindByIDWithTx(ctx, tx, id)
		if err != nil {
			return err
		}

		req.ApplyTo(b)
		if err := b.Validate(); err != nil {
			return err
		}
		b.AuthorID = authorID(author)

		return s.repo.UpdateWithTx(ctx, tx, b)
	})
	if err != nil {
		return err
	}

	s.repo.InvalidateCache(ctx, id)
	return nil
}

func (s *bookService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrBookNotFound
	}

	err := s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.repo.FindByIDWithTx(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.DeleteWithTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.repo.InvalidateCache(ctx, id)
	log.Info().Int64("book_id", id).Msg("[BOOK] deleted")
	return nil
}

// resolveAuthor locks the referenced author so it cannot be deleted before
// the book row is written. Unknown ids resolve to nil.
func (s *bookService) resolveAuthor(ctx context.Context, tx pgx.Tx, ref int64) (*authormodel.AuthorSummary, error) {
	if ref == model.NoAuthor {
		return nil, nil
	}

	a, err := s.authors.FindByIDWithTx(ctx, tx, ref)
	if err != nil {
		if errors.Is(err, authormodel.ErrAuthorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	summary := a.ToSummary()
	return &summary, nil
}

func retryWrite(err error) bool {
	return errors.Is(err, model.ErrAuthorGone) || database.IsTransient(err)
}

func authorID(a *authormodel.AuthorSummary) *int64 {
	if a == nil {
		return nil
	}
	id := a.ID
	return &id
}
