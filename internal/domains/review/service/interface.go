package service

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/author"
	bookModel "bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/review/model"
)

// =====================================================
// REVIEW SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// USER OPERATIONS
	// ========================================

	// CreateReview: 404 book missing, 409 already reviewed (existence cache trước DB)
	CreateReview(ctx context.Context, userID uuid.UUID, req model.CreateReviewRequest) (*model.ReviewResponse, error)

	// CreateReviewWithBook resolves or creates the author and the book, then creates the review
	CreateReviewWithBook(ctx context.Context, userID uuid.UUID, req model.CreateReviewWithBookRequest) (*model.CreateReviewWithBookResponse, error)

	GetReview(ctx context.Context, id uuid.UUID) (*model.ReviewResponse, error)
	UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, req model.UpdateReviewRequest) (*model.ReviewResponse, error)
	DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error
	MarkHelpful(ctx context.Context, reviewID uuid.UUID) (*model.ReviewResponse, error)

	// ========================================
	// PUBLIC QUERIES
	// ========================================

	ListBookReviews(ctx context.Context, bookID uuid.UUID, sortBy string, limit, skip int) ([]model.ReviewResponse, error)
	GetBookRating(ctx context.Context, bookID uuid.UUID) (*model.RatingResponse, error)
	GetUserReviewOfBook(ctx context.Context, userID, bookID uuid.UUID) (*model.ReviewResponse, error)
	HasReviewed(ctx context.Context, userID, bookID uuid.UUID) (*model.ReviewedResponse, error)

	// ========================================
	// CATALOG HOOKS
	// ========================================

	// ForgetBook drops cached existence answers of a deleted book; its reviews go with it (ON DELETE CASCADE)
	ForgetBook(ctx context.Context, bookID uuid.UUID)
}

// BookCatalog là phần của book service mà review cần
type BookCatalog interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateBook(ctx context.Context, req bookModel.CreateBookRequest, createdBy *uuid.UUID) (*bookModel.CreateBookResponse, error)
}

// AuthorResolver - author.Service.FindOrCreate
type AuthorResolver interface {
	FindOrCreate(ctx context.Context, rawName string, createdBy *uuid.UUID) (*author.Author, bool, error)
}
