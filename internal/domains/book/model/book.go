package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	authormodel "bookshelf-api/internal/domains/author/model"
	"bookshelf-api/internal/shared/violation"
)

const (
	MaxTitleLength     = 255
	MaxCoverTextLength = 65535

	// NoAuthor là giá trị mặc định của idAuthor: không gắn tác giả
	NoAuthor int64 = -1
)

// Book mirrors a books row. AuthorID is nil when no author is linked.
type Book struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CoverText string    `json:"coverText" db:"cover_text"`
	AuthorID  *int64    `json:"authorId" db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (b Book) Validate() error {
	return violation.From(validation.ValidateStruct(&b,
		validation.Field(&b.Title, violation.Required, violation.NotBlank, validation.RuneLength(0, MaxTitleLength)),
		validation.Field(&b.CoverText, validation.RuneLength(0, MaxCoverTextLength)),
	))
}

// BookSummary is the "summary" view. Author is null when unlinked.
type BookSummary struct {
	ID        int64                      `json:"id"`
	Title     string                     `json:"title"`
	CoverText string                     `json:"coverText"`
	Author    *authormodel.AuthorSummary `json:"author"`
}

func (b *Book) ToSummary(author *authormodel.AuthorSummary) BookSummary {
	return BookSummary{
		ID:        b.ID,
		Title:     b.Title,
		CoverText: b.CoverText,
		Author:    author,
	}
}

// BookWithAuthor is a list row: the book plus its joined author, if any.
type BookWithAuthor struct {
	Book
	Author *authormodel.AuthorSummary
}

func (b *BookWithAuthor) ToSummary() BookSummary {
	return b.Book.ToSummary(b.Author)
}
