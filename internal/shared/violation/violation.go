// Package violation turns ozzo-validation results into the API's violation list.
package violation

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Violation is one failed constraint on one field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries the violations of a rejected entity. It is the only error a
// service returns that the handlers answer with 400.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// New builds an Error from explicit violations.
func New(violations ...Violation) *Error {
	return &Error{Violations: violations}
}

// Malformed reports a body that could not be decoded at all.
func Malformed(err error) *Error {
	return New(Violation{Message: "malformed JSON body: " + err.Error()})
}

// From converts the result of validation.ValidateStruct. A nil input yields nil;
// an internal validation failure (bad rule setup) is returned unchanged.
func From(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return New(Violation{Message: err.Error()})
	}

	out := &Error{}
	flatten("", fieldErrs, out)
	sort.SliceStable(out.Violations, func(i, j int) bool {
		return out.Violations[i].Field < out.Violations[j].Field
	})
	return out
}

func flatten(prefix string, errs validation.Errors, out *Error) {
	for field, fieldErr := range errs {
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}

		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			flatten(name, nested, out)
			continue
		}

		out.Violations = append(out.Violations, Violation{Field: name, Message: fieldErr.Error()})
	}
}
