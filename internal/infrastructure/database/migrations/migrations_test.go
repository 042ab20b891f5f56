package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_AreOrderedAndAnnotated(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)

	assert.Equal(t, []string{"00001_create_authors.sql", "00002_create_books.sql"}, names)

	for _, name := range names {
		body, err := embedded.ReadFile(name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestBooksMigration_DetachesOnAuthorDelete(t *testing.T) {
	body, err := embedded.ReadFile("00002_create_books.sql")
	require.NoError(t, err)

	assert.Contains(t, string(body), "REFERENCES authors (id) ON DELETE SET NULL")
}
