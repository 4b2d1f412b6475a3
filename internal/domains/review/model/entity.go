package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Review: một user chỉ có tối đa một review cho mỗi book
type Review struct {
	ID     uuid.UUID `json:"id"`
	BookID uuid.UUID `json:"book_id"`
	UserID uuid.UUID `json:"user_id"`

	// Content
	Rating         int      `json:"rating"` // 1-5
	Content        string   `json:"content"`
	Tags           []string `json:"tags"`
	SpoilerWarning bool     `json:"spoiler_warning"`
	HelpfulCount   int      `json:"helpful_count"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwnedBy checks if the review belongs to userID
func (r *Review) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}

func (r *Review) ToResponse() ReviewResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return ReviewResponse{
		ID:             r.ID,
		BookID:         r.BookID,
		UserID:         r.UserID,
		Rating:         r.Rating,
		Content:        r.Content,
		Tags:           tags,
		SpoilerWarning: r.SpoilerWarning,
		HelpfulCount:   r.HelpfulCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func ToResponses(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviews[i].ToResponse())
	}
	return out
}

// RatingStats là tổng hợp thô từ DB
type RatingStats struct {
	Sum   int64
	Count int64
}

// Average rounds half away from zero to 2 decimal places; zero reviews give 0.
func (s RatingStats) Average() decimal.Decimal {
	if s.Count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.Sum).
		DivRound(decimal.NewFromInt(s.Count), 4).
		Round(2)
}
