// Package fixtures seeds a development database with sample authors and books.
package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	authormodel "bookshelf-api/internal/domains/author/model"
	authorrepo "bookshelf-api/internal/domains/author/repository"
	bookmodel "bookshelf-api/internal/domains/book/model"
	bookrepo "bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/pkg/database"
)

const (
	AuthorCount = 10
	BookCount   = 20
)

// Result lists the ids created by Load.
type Result struct {
	AuthorIDs []int64
	BookIDs   []int64
}

// Load inserts AuthorCount authors and BookCount books in one transaction.
// Each book is linked to an author picked with rng.
func Load(
	ctx context.Context,
	txManager database.TransactionManager,
	authors authorrepo.RepositoryInterface,
	books bookrepo.RepositoryInterface,
	rng *rand.Rand,
) (*Result, error) {
	res, err := database.WithTransactionResult(ctx, txManager, func(tx pgx.Tx) (*Result, error) {
		res := &Result{
			AuthorIDs: make([]int64, 0, AuthorCount),
			BookIDs:   make([]int64, 0, BookCount),
		}

		for i := 1; i <= AuthorCount; i++ {
			a := &authormodel.Author{
				FirstName: fmt.Sprintf("Prénom%d", i),
				LastName:  fmt.Sprintf("Nom%d", i),
			}
			if err := authors.CreateWithTx(ctx, tx, a); err != nil {
				return nil, fmt.Errorf("seed author %d: %w", i, err)
			}
			res.AuthorIDs = append(res.AuthorIDs, a.ID)
		}

		for i := 1; i <= BookCount; i++ {
			authorID := res.AuthorIDs[rng.IntN(len(res.AuthorIDs))]
			b := &bookmodel.Book{
				Title:     fmt.Sprintf("Titre%d", i),
				CoverText: fmt.Sprintf("Cover%d", i),
				AuthorID:  &authorID,
			}
			if err := books.CreateWithTx(ctx, tx, b); err != nil {
				return nil, fmt.Errorf("seed book %d: %w", i, err)
			}
			res.BookIDs = append(res.BookIDs, b.ID)
		}

		return res, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("authors", len(res.AuthorIDs)).
		Int("books", len(res.BookIDs)).
		Msg("[FIXTURES] loaded")

	return res, nil
}
