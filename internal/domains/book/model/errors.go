package model

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")

	// ErrAuthorGone: author_id trỏ tới author đã bị xoá (FK 23503)
	ErrAuthorGone = errors.New("linked author no longer exists")
)
