package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/internal/domains/review/repository"
	"bookshelf-backend/internal/infrastructure/messaging"
	"bookshelf-backend/pkg/cache"
)

type reviewService struct {
	reviewRepo repository.ReviewRepository
	books      BookCatalog
	authors    AuthorResolver
	existence  *cache.ExistenceCache
	publisher  messaging.Publisher
	topic      string
	now        func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	books BookCatalog,
	authors AuthorResolver,
	existence *cache.ExistenceCache,
	publisher messaging.Publisher,
	topic string,
) ServiceInterface {
	return &reviewService{
		reviewRepo: reviewRepo,
		books:      books,
		authors:    authors,
		existence:  existence,
		publisher:  publisher,
		topic:      topic,
		now:        time.Now,
	}
}

// =====================================================
// CREATE REVIEW
// =====================================================

func (s *reviewService) CreateReview(
	ctx context.Context,
	userID uuid.UUID,
	req model.CreateReviewRequest,
) (*model.ReviewResponse, error) {
	// Step 1: Validate request
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Book phải tồn tại trong catalog
	if err := s.ensureBook(ctx, req.BookID); err != nil {
		return nil, err
	}

	// Step 3: Existence check, cache trước rồi mới tới DB
	existingID, reviewed, err := s.lookupReviewID(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, model.NewAlreadyReviewedError(existingID)
	}

	// Step 4: Insert
	now := s.now().UTC()
	review := &model.Review{
		ID:             uuid.New(),
		BookID:         req.BookID,
		UserID:         userID,
		Rating:         req.Rating,
		Content:        req.Content,
		Tags:           req.Tags,
		SpoilerWarning: req.SpoilerWarning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if review.Tags == nil {
		review.Tags = []string{}
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, model.ErrAlreadyReviewed) {
			return nil, s.lostCreateRace(ctx, userID, req.BookID)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	// Step 5: Cache + event
	s.existence.RecordPresent(ctx, model.ExistenceKey(userID, review.BookID), review.ID.String())
	messaging.PublishBestEffort(ctx, s.publisher, s.topic, review.ID.String(), messaging.ReviewCreated, messaging.ReviewEventData{
		ReviewID: review.ID.String(),
		BookID:   review.BookID.String(),
		UserID:   userID.String(),
		Rating:   review.Rating,
	})

	log.Info().
		Str("review_id", review.ID.String()).
		Str("book_id", review.BookID.String()).
		Str("user_id", userID.String()).
		Msg("Review created")

	resp := review.ToResponse()
	return &resp, nil
}

// ForgetBook được gọi sau khi book bị xoá: cascade đã xoá review trong DB,
// cache phải quên theo
func (s *reviewService) ForgetBook(ctx context.Context, bookID uuid.UUID) {
	s.existence.InvalidateMatching(ctx, model.BookExistencePattern(bookID))
	log.Info().Str("book_id", bookID.String()).Msg("Review existence cache cleared for deleted book")
}

// lostCreateRace: request song song đã insert trước, đọc lại review thắng
// để cache và trả 409 kèm id của nó
func (s *reviewService) lostCreateRace(ctx context.Context, userID, bookID uuid.UUID) error {
	existing, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, model.ErrReviewNotFound) {
			// winner was deleted in between
			return model.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to read existing review: %w", err)
	}
	s.existence.RecordPresent(ctx, model.ExistenceKey(userID, bookID), existing.ID.String())
	return model.NewAlreadyReviewedError(existing.ID)
}

// =====================================================
// CREATE REVIEW WITH BOOK
// =====================================================

func (s *reviewService) CreateReviewWithBook(
	ctx context.Context,
	userID uuid.UUID,
	req model.CreateReviewWithBookRequest,
) (*model.CreateReviewWithBookResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &model.CreateReviewWithBookResponse{}

	if req.BookID != nil {
		resp.BookID = *req.BookID
	} else {
		authorID, authorCreated, err := s.resolveAuthor(ctx, userID, req)
		if err != nil {
			return nil, err
		}
		resp.AuthorID = &authorID
		resp.AuthorCreated = authorCreated

		book, err := s.books.CreateBook(ctx, bookModel.CreateBookRequest{
			Title:           *req.BookTitle,
			AuthorID:        authorID,
			ISBN:            req.ISBN,
			Genre:           req.Genre,
			PublicationYear: req.PublicationYear,
		}, &userID)
		if err != nil {
			return nil, fmt.Errorf("resolve book: %w", err)
		}
		resp.BookID = book.Book.ID
		resp.BookCreated = book.Created
	}

	review, err := s.CreateReview(ctx, userID, req.ReviewPart(resp.BookID))
	if err != nil {
		return nil, err
	}
	resp.Review = *review
	return resp, nil
}

func (s *reviewService) resolveAuthor(ctx context.Context, userID uuid.UUID, req model.CreateReviewWithBookRequest) (uuid.UUID, bool, error) {
	if req.AuthorID != nil {
		return *req.AuthorID, false, nil
	}
	a, created, err := s.authors.FindOrCreate(ctx, *req.AuthorName, &userID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("resolve author: %w", err)
	}
	return a.ID, created, nil
}

// =====================================================
// GET / UPDATE / DELETE
// =====================================================

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*model.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := review.ToResponse()
	return &resp, nil
}

func (s *reviewService) UpdateReview(
	ctx context.Context,
	userID, reviewID uuid.UUID,
	req model.UpdateReviewRequest,
) (*model.ReviewResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		return nil, model.NewForbiddenError("You can only edit your own reviews")
	}

	req.Apply(review)
	review.UpdatedAt = s.now().UTC()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	// existence không đổi: user vẫn đã review book này
	messaging.PublishBestEffort(ctx, s.publisher, s.topic, review.ID.String(), messaging.ReviewUpdated, messaging.ReviewEventData{
		ReviewID: review.ID.String(),
		BookID:   review.BookID.String(),
		UserID:   userID.String(),
	})

	resp := review.ToResponse()
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !review.IsOwnedBy(userID) {
		return model.NewForbiddenError("You can only delete your own reviews")
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	// Invalidate đồng bộ, trước khi trả response
	s.existence.Invalidate(ctx, model.ExistenceKey(review.UserID, review.BookID))

	messaging.PublishBestEffort(ctx, s.publisher, s.topic, review.ID.String(), messaging.ReviewDeleted, messaging.ReviewEventData{
		ReviewID: review.ID.String(),
		BookID:   review.BookID.String(),
		UserID:   userID.String(),
	})

	log.Info().Str("review_id", reviewID.String()).Str("user_id", userID.String()).Msg("Review deleted")
	return nil
}

func (s *reviewService) MarkHelpful(ctx context.Context, reviewID uuid.UUID) (*model.ReviewResponse, error) {
	review, err := s.reviewRepo.IncrementHelpful(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	resp := review.ToResponse()
	return &resp, nil
}

// =====================================================
// PUBLIC QUERIES
// =====================================================

func (s *reviewService) ListBookReviews(ctx context.Context, bookID uuid.UUID, sortBy string, limit, skip int) ([]model.ReviewResponse, error) {
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByBook(ctx, bookID, model.NormalizeSort(sortBy), limit, skip)
	if err != nil {
		return nil, err
	}
	return model.ToResponses(reviews), nil
}

func (s *reviewService) GetBookRating(ctx context.Context, bookID uuid.UUID) (*model.RatingResponse, error) {
	stats, err := s.reviewRepo.GetRatingStats(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &model.RatingResponse{
		BookID:        bookID,
		AverageRating: stats.Average().InexactFloat64(),
		ReviewCount:   stats.Count,
	}, nil
}

func (s *reviewService) GetUserReviewOfBook(ctx context.Context, userID, bookID uuid.UUID) (*model.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	resp := review.ToResponse()
	return &resp, nil
}

func (s *reviewService) HasReviewed(ctx context.Context, userID, bookID uuid.UUID) (*model.ReviewedResponse, error) {
	id, reviewed, err := s.lookupReviewID(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		return &model.ReviewedResponse{Reviewed: false}, nil
	}
	return &model.ReviewedResponse{Reviewed: true, ReviewID: &id}, nil
}

// =====================================================
// helpers
// =====================================================

// ensureBook: catalog trả lỗi thì 503, không bao giờ là 404
func (s *reviewService) ensureBook(ctx context.Context, bookID uuid.UUID) error {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		log.Error().Err(err).Str("book_id", bookID.String()).Msg("Book catalog lookup failed")
		return fmt.Errorf("%w: %v", model.ErrCatalogUnavailable, err)
	}
	if !exists {
		return model.ErrBookNotFound
	}
	return nil
}

// lookupReviewID đọc qua existence cache; DB là nguồn authoritative
func (s *reviewService) lookupReviewID(ctx context.Context, userID, bookID uuid.UUID) (uuid.UUID, bool, error) {
	value, ok, err := s.existence.Lookup(ctx, model.ExistenceKey(userID, bookID), func(ctx context.Context) (string, bool, error) {
		review, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
		if errors.Is(err, model.ErrReviewNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to check existing review: %w", err)
		}
		return review.ID.String(), true, nil
	})
	if err != nil || !ok {
		return uuid.Nil, false, err
	}

	id, err := uuid.Parse(value)
	if err != nil {
		// Giá trị cache hỏng: bỏ đi và hỏi lại DB
		log.Warn().Str("value", value).Msg("[CACHE] corrupt review id in existence cache")
		s.existence.Invalidate(ctx, model.ExistenceKey(userID, bookID))
		review, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
		if errors.Is(err, model.ErrReviewNotFound) {
			return uuid.Nil, false, nil
		}
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to check existing review: %w", err)
		}
		return review.ID, true, nil
	}
	return id, true, nil
}
