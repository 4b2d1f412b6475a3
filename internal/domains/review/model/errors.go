package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes
const (
	ErrCodeReviewNotFound     = "REV001"
	ErrCodeAlreadyReviewed    = "REV002"
	ErrCodeForbidden          = "REV003"
	ErrCodeBookNotFound       = "REV004"
	ErrCodeCatalogUnavailable = "REV005"
	ErrCodeInvalidBookRef     = "REV006"
)

// Errors
var (
	ErrReviewNotFound       = errors.New("review not found")
	ErrAlreadyReviewed      = errors.New("already reviewed this book")
	ErrForbidden            = errors.New("not allowed to modify another user's review")
	ErrBookNotFound         = errors.New("book not found")
	ErrCatalogUnavailable   = errors.New("book catalog unavailable")
	ErrInvalidBookReference = errors.New("invalid book reference")
)

// ReviewError custom error type, mang theo code trả về cho client
type ReviewError struct {
	Code     string
	Message  string
	ReviewID uuid.UUID
	Err      error
}

func (e *ReviewError) Error() string {
	return e.Message
}

func (e *ReviewError) Unwrap() error {
	return e.Err
}

// NewAlreadyReviewedError chỉ cho client review đã có để dùng PUT
func NewAlreadyReviewedError(reviewID uuid.UUID) *ReviewError {
	return &ReviewError{
		Code:     ErrCodeAlreadyReviewed,
		Message:  fmt.Sprintf("You already reviewed this book (review id: %s). Use PUT to update", reviewID),
		ReviewID: reviewID,
		Err:      ErrAlreadyReviewed,
	}
}

func NewForbiddenError(message string) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeForbidden,
		Message: message,
		Err:     ErrForbidden,
	}
}

// ErrorCode maps err to the code returned in the error envelope.
func ErrorCode(err error) string {
	var revErr *ReviewError
	if errors.As(err, &revErr) {
		return revErr.Code
	}
	switch {
	case errors.Is(err, ErrReviewNotFound):
		return ErrCodeReviewNotFound
	case errors.Is(err, ErrBookNotFound):
		return ErrCodeBookNotFound
	case errors.Is(err, ErrCatalogUnavailable):
		return ErrCodeCatalogUnavailable
	case errors.Is(err, ErrInvalidBookReference):
		return ErrCodeInvalidBookRef
	}
	return ""
}
