package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresReviewRepository struct {
	db database.DBTX
}

func NewPostgresReviewRepository(db database.DBTX) ReviewRepository {
	return &postgresReviewRepository{db: db}
}

const reviewColumns = `id, book_id, user_id, rating, content, tags, spoiler_warning, helpful_count, created_at, updated_at`

// =====================================================
// CREATE
// =====================================================

func (r *postgresReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, book_id, user_id,
			rating, content, tags, spoiler_warning, helpful_count,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.Content,
		pq.Array(tagsOrEmpty(review.Tags)),
		review.SpoilerWarning,
		review.HelpfulCount,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return model.ErrAlreadyReviewed
		}
		if database.IsForeignKeyViolation(err) {
			return model.ErrBookNotFound
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// =====================================================
// GET
// =====================================================

func (r *postgresReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapRead("get review", err)
	}
	return review, nil
}

func (r *postgresReviewRepository) GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND book_id = $2`

	review, err := scanReview(r.db.QueryRow(ctx, query, userID, bookID))
	if err != nil {
		return nil, wrapRead("get review by user and book", err)
	}
	return review, nil
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func (r *postgresReviewRepository) Update(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, content = $3, tags = $4, spoiler_warning = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		review.ID,
		review.Rating,
		review.Content,
		pq.Array(tagsOrEmpty(review.Tags)),
		review.SpoilerWarning,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

// IncrementHelpful tăng helpful_count atomically và trả về bản ghi mới
func (r *postgresReviewRepository) IncrementHelpful(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `
		UPDATE reviews SET helpful_count = helpful_count + 1
		WHERE id = $1
		RETURNING ` + reviewColumns

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapRead("increment helpful count", err)
	}
	return review, nil
}

// =====================================================
// LIST & STATISTICS
// =====================================================

func (r *postgresReviewRepository) ListByBook(ctx context.Context, bookID uuid.UUID, sortBy string, limit, skip int) ([]model.Review, error) {
	orderBy := "created_at DESC, id"
	if model.NormalizeSort(sortBy) == model.SortHelpful {
		orderBy = "helpful_count DESC, created_at DESC, id"
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE book_id = $1 ORDER BY ` + orderBy + ` LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, bookID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

func (r *postgresReviewRepository) GetRatingStats(ctx context.Context, bookID uuid.UUID) (model.RatingStats, error) {
	query := `SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM reviews WHERE book_id = $1`

	var stats model.RatingStats
	if err := r.db.QueryRow(ctx, query, bookID).Scan(&stats.Sum, &stats.Count); err != nil {
		return model.RatingStats{}, fmt.Errorf("failed to get rating stats: %w", err)
	}
	return stats, nil
}

// =====================================================
// helpers
// =====================================================

func scanReview(row pgx.Row) (*model.Review, error) {
	review := &model.Review{}
	var tags []string

	err := row.Scan(
		&review.ID,
		&review.BookID,
		&review.UserID,
		&review.Rating,
		&review.Content,
		pq.Array(&tags),
		&review.SpoilerWarning,
		&review.HelpfulCount,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	review.Tags = tagsOrEmpty(tags)
	return review, nil
}

func wrapRead(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrReviewNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
