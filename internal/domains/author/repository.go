package author

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/dedup"
)

// Repository defines data access methods for authors.
// FindByMatchKey/ListCandidates (dedup.Source) là những gì resolver cần.
type Repository interface {
	dedup.Source

	// Create trả về ErrDuplicateName khi name_key đã tồn tại
	Create(ctx context.Context, a *Author) error
	FindByID(ctx context.Context, id uuid.UUID) (*Author, error)
	Search(ctx context.Context, query string, limit int) ([]Author, error)
	List(ctx context.Context, limit, skip int) ([]Author, int, error)
}
