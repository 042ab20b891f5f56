package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"bookshelf-api/internal/domains/author/model"
	"bookshelf-api/internal/domains/author/repository"
	"bookshelf-api/pkg/database"
)

const deleteAttempts = 2

type authorService struct {
	repo      repository.RepositoryInterface
	books     BookDetacher
	txManager database.TransactionManager
}

func NewAuthorService(
	repo repository.RepositoryInterface,
	books BookDetacher,
	txManager database.TransactionManager,
) ServiceInterface {
	return &authorService{
		repo:      repo,
		books:     books,
		txManager: txManager,
	}
}

func (s *authorService) List(ctx context.Context) ([]model.AuthorSummary, error) {
	authors, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return model.ToSummaries(authors), nil
}

func (s *authorService) GetByID(ctx context.Context, id int64) (*model.AuthorSummary, error) {
	if id <= 0 {
		return nil, model.ErrAuthorNotFound
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := a.ToSummary()
	return &summary, nil
}

func (s *authorService) Create(ctx context.Context, req model.AuthorPayload) (*model.AuthorSummary, error) {
	a := &model.Author{}
	req.ApplyTo(a)

	// validate trước khi mở transaction
	if err := a.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.CreateWithTx(ctx, tx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	log.Info().Int64("author_id", a.ID).Msg("[AUTHOR] created")

	summary := a.ToSummary()
	return &summary, nil
}

// Update: load (FOR UPDATE) -> apply body -> validate -> persist.
// A validation failure rolls the transaction back.
func (s *authorService) Update(ctx context.Context, id int64, req model.AuthorPayload) error {
	if id <= 0 {
		return model.ErrAuthorNotFound
	}

	err := s.txManager.WithinTransaction(ctx, func(tx pgx.Tx) error {
		a, err := s.repo.FindByIDWithTx(ctx, tx, id)
		if err != nil {
			return err
		}

		req.ApplyTo(a)
		if err := a.Validate(); err != nil {
			return err
		}

		return s.repo.UpdateWithTx(ctx, tx, a)
	})
	if err != nil {
		return err
	}

	s.repo.InvalidateCache(ctx, id)
	return nil
}

// Delete detaches the author's books, then removes the author.
func (s *authorService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrAuthorNotFound
	}

	var detached []int64
	err := database.WithRetry(ctx, s.txManager, deleteAttempts, database.IsTransient, func(tx pgx.Tx) error {
		if _, err := s.repo.FindByIDWithTx(ctx, tx, id); err != nil {
			return err
		}

		var err error
		detached, err = s.books.DetachAuthorWithTx(ctx, tx, id)
		if err != nil {
			return err
		}

		return s.repo.DeleteWithTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.repo.InvalidateCache(ctx, id)
	s.books.InvalidateCache(ctx, detached...)

	log.Info().Int64("author_id", id).Int("detached_books", len(detached)).Msg("[AUTHOR] deleted")
	return nil
}
