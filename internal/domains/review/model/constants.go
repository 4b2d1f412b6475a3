package model

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// Rating
	MinRating = 1
	MaxRating = 5

	// Content limits
	MaxContentLength = 5000
	MaxTags          = 20
	MaxTagLength     = 50
)

// Sort orders cho GET /api/books/:id/reviews
const (
	SortRecent  = "recent"
	SortHelpful = "helpful"
)

// Existence cache lines: user:{uid}:book:{bid}:review / user:{uid}:book:{bid}:no_review
const (
	ExistencePresentSuffix = "review"
	ExistenceAbsentSuffix  = "no_review"
)

// ExistenceKey là key gốc của cặp (user, book) trong existence cache
func ExistenceKey(userID, bookID uuid.UUID) string {
	return fmt.Sprintf("user:%s:book:%s", userID, bookID)
}

// BookExistencePattern khớp mọi existence key của một book, với mọi user
func BookExistencePattern(bookID uuid.UUID) string {
	return fmt.Sprintf("user:*:book:%s", bookID)
}

// NormalizeSort trả về SortRecent cho mọi giá trị lạ
func NormalizeSort(sortBy string) string {
	if sortBy == SortHelpful {
		return SortHelpful
	}
	return SortRecent
}
