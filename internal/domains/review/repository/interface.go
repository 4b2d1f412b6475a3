package repository

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/review/model"
)

// =====================================================
// REVIEW REPOSITORY INTERFACE
// =====================================================

type ReviewRepository interface {
	// ========================================
	// CRUD Operations
	// ========================================

	// Create trả về ErrAlreadyReviewed khi vi phạm unique(book_id, user_id)
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	// GetByUserAndBook là nguồn authoritative của existence cache
	GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementHelpful(ctx context.Context, id uuid.UUID) (*model.Review, error)

	// ========================================
	// LIST & STATISTICS
	// ========================================

	ListByBook(ctx context.Context, bookID uuid.UUID, sortBy string, limit, skip int) ([]model.Review, error)
	GetRatingStats(ctx context.Context, bookID uuid.UUID) (model.RatingStats, error)
}
