package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookshelf-api/internal/shared/violation"
)

const MaxNameLength = 255

type Author struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate returns violation.Error listing every failed field, or nil.
func (a Author) Validate() error {
	return violation.From(validation.ValidateStruct(&a,
		validation.Field(&a.FirstName, violation.Required, violation.NotBlank, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&a.LastName, violation.Required, violation.NotBlank, validation.RuneLength(0, MaxNameLength)),
	))
}

// AuthorSummary là projection "summary" dùng cho mọi response
type AuthorSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (a *Author) ToSummary() AuthorSummary {
	return AuthorSummary{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}

func ToSummaries(authors []Author) []AuthorSummary {
	out := make([]AuthorSummary, len(authors))
	for i := range authors {
		out[i] = authors[i].ToSummary()
	}
	return out
}
