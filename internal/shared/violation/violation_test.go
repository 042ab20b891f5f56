package violation

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (s sample) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required.Error("title must not be blank")),
		validation.Field(&s.Name, validation.Required.Error("name must not be blank")),
	)
}

func TestFrom_Nil(t *testing.T) {
	assert.NoError(t, From(nil))
}

func TestFrom_SortsByJSONFieldName(t *testing.T) {
	err := From(sample{}.Validate())

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Violation{
		{Field: "name", Message: "name must not be blank"},
		{Field: "title", Message: "title must not be blank"},
	}, verr.Violations)
	assert.Equal(t, "validation failed: name: name must not be blank; title: title must not be blank", verr.Error())
}

func TestFrom_NestedErrorsAreFlattened(t *testing.T) {
	err := From(validation.Errors{
		"author": validation.Errors{"lastName": errors.New("cannot be blank")},
	})

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Violation{{Field: "author.lastName", Message: "cannot be blank"}}, verr.Violations)
}

func TestFrom_InternalErrorPassesThrough(t *testing.T) {
	internal := validation.NewInternalError(errors.New("bad rule"))

	err := From(internal)

	var verr *Error
	assert.False(t, errors.As(err, &verr))
	assert.Equal(t, internal, err)
}

func TestMalformed(t *testing.T) {
	verr := Malformed(errors.New("unexpected EOF"))

	require.Len(t, verr.Violations, 1)
	assert.Empty(t, verr.Violations[0].Field)
	assert.Equal(t, "malformed JSON body: unexpected EOF", verr.Violations[0].Message)
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate(""))
	assert.NoError(t, NotBlank.Validate("Hugo"))
	assert.EqualError(t, NotBlank.Validate("   "), "must not be blank")
}
