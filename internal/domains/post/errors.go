package post

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("cannot modify another user's post")
)
