// Package testutils provides an in-memory store that satisfies the author and
// book repository interfaces, for tests that exercise the full HTTP stack
// without PostgreSQL.
package testutils

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	authormodel "bookshelf-api/internal/domains/author/model"
	authorrepo "bookshelf-api/internal/domains/author/repository"
	bookmodel "bookshelf-api/internal/domains/book/model"
	bookrepo "bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/pkg/database"
)

// Store holds authors and books in maps. WithinTransaction serializes units
// of work and restores the maps when fn fails.
type Store struct {
	txMu sync.Mutex

	mu         sync.Mutex
	authors    map[int64]authormodel.Author
	books      map[int64]bookmodel.Book
	nextAuthor int64
	nextBook   int64
}

var _ database.TransactionManager = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		authors: make(map[int64]authormodel.Author),
		books:   make(map[int64]bookmodel.Book),
	}
}

func (s *Store) Authors() authorrepo.RepositoryInterface { return &memAuthors{s} }
func (s *Store) Books() bookrepo.RepositoryInterface     { return &memBooks{s} }

func (s *Store) WithinTransaction(_ context.Context, fn database.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	authors, books := maps.Clone(s.authors), maps.Clone(s.books)
	nextAuthor, nextBook := s.nextAuthor, s.nextBook
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.authors, s.books = authors, books
		s.nextAuthor, s.nextBook = nextAuthor, nextBook
		s.mu.Unlock()
		return err
	}
	return nil
}

// AuthorCount and BookCount are for assertions.
func (s *Store) AuthorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.authors)
}

func (s *Store) BookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

type memAuthors struct{ s *Store }

func (r *memAuthors) FindAll(context.Context) ([]authormodel.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]authormodel.Author, 0, len(r.s.authors))
	for _, id := range slices.Sorted(maps.Keys(r.s.authors)) {
		out = append(out, r.s.authors[id])
	}
	return out, nil
}

func (r *memAuthors) FindByID(_ context.Context, id int64) (*authormodel.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.authors[id]
	if !ok {
		return nil, authormodel.ErrAuthorNotFound
	}
	return &a, nil
}

func (r *memAuthors) FindByIDWithTx(ctx context.Context, _ pgx.Tx, id int64) (*authormodel.Author, error) {
	return r.FindByID(ctx, id)
}

func (r *memAuthors) CreateWithTx(_ context.Context, _ pgx.Tx, a *authormodel.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextAuthor++
	a.ID = r.s.nextAuthor
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.s.authors[a.ID] = *a
	return nil
}

func (r *memAuthors) UpdateWithTx(_ context.Context, _ pgx.Tx, a *authormodel.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.authors[a.ID]; !ok {
		return authormodel.ErrAuthorNotFound
	}
	a.UpdatedAt = time.Now()
	r.s.authors[a.ID] = *a
	return nil
}

func (r *memAuthors) DeleteWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.authors[id]; !ok {
		return authormodel.ErrAuthorNotFound
	}
	delete(r.s.authors, id)
	return nil
}

func (r *memAuthors) InvalidateCache(context.Context, ...int64) {}

type memBooks struct{ s *Store }

func (r *memBooks) FindAll(context.Context) ([]bookmodel.BookWithAuthor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]bookmodel.BookWithAuthor, 0, len(r.s.books))
	for _, id := range slices.Sorted(maps.Keys(r.s.books)) {
		row := bookmodel.BookWithAuthor{Book: r.s.books[id]}
		if row.AuthorID != nil {
			if a, ok := r.s.authors[*row.AuthorID]; ok {
				summary := a.ToSummary()
				row.Author = &summary
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *memBooks) FindByID(_ context.Context, id int64) (*bookmodel.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, bookmodel.ErrBookNotFound
	}
	return &b, nil
}

func (r *memBooks) FindByIDWithTx(ctx context.Context, _ pgx.Tx, id int64) (*bookmodel.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *memBooks) CreateWithTx(_ context.Context, _ pgx.Tx, b *bookmodel.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkAuthor(b.AuthorID); err != nil {
		return err
	}

	r.s.nextBook++
	b.ID = r.s.nextBook
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.s.books[b.ID] = *b
	return nil
}

func (r *memBooks) UpdateWithTx(_ context.Context, _ pgx.Tx, b *bookmodel.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[b.ID]; !ok {
		return bookmodel.ErrBookNotFound
	}
	if err := r.checkAuthor(b.AuthorID); err != nil {
		return err
	}

	b.UpdatedAt = time.Now()
	r.s.books[b.ID] = *b
	return nil
}

func (r *memBooks) DeleteWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return bookmodel.ErrBookNotFound
	}
	delete(r.s.books, id)
	return nil
}

func (r *memBooks) DetachAuthorWithTx(_ context.Context, _ pgx.Tx, authorID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []int64
	for _, id := range slices.Sorted(maps.Keys(r.s.books)) {
		b := r.s.books[id]
		if b.AuthorID != nil && *b.AuthorID == authorID {
			b.AuthorID = nil
			r.s.books[id] = b
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memBooks) InvalidateCache(context.Context, ...int64) {}

// checkAuthor mimics the books.author_id foreign key. Caller holds mu.
func (r *memBooks) checkAuthor(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := r.s.authors[*id]; !ok {
		return bookmodel.ErrAuthorGone
	}
	return nil
}
