package author

import (
	"errors"
	"fmt"
	"net/http"

	"bookshelf-backend/internal/dedup"
)

var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrInvalidName    = errors.New("author name is invalid")

	// ErrDuplicateName: name_key đã tồn tại; được resolver xử lý như lost race
	ErrDuplicateName = fmt.Errorf("author name already exists: %w", dedup.ErrUniquenessViolation)
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrInvalidName), errors.Is(err, dedup.ErrInvalidInput):
		return "INVALID_NAME"
	case errors.Is(err, dedup.ErrUniquenessViolation):
		return "DUPLICATE_AUTHOR"
	default:
		return "SERVICE_UNAVAILABLE"
	}
}

// ToHTTPStatus converts error to HTTP status code. Lỗi store không bao giờ thành 404.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidName), errors.Is(err, dedup.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, dedup.ErrUniquenessViolation):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
