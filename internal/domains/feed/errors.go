package feed

import "errors"

var (
	ErrInvalidEvent     = errors.New("event is missing post_id or user_id")
	ErrStoreUnavailable = errors.New("activity store unavailable")
)
