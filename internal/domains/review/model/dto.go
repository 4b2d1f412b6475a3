package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ========================================
// REQUEST
// ========================================

// CreateReviewRequest - POST /api/reviews
type CreateReviewRequest struct {
	BookID         uuid.UUID `json:"book_id"`
	Rating         int       `json:"rating"`
	Content        string    `json:"content"`
	Tags           []string  `json:"tags"`
	SpoilerWarning bool      `json:"spoiler_warning"`
}

func (r *CreateReviewRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
	r.Tags = normalizeTags(r.Tags)
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.By(notNilUUID)),
		validation.Field(&r.Rating, ratingRules...),
		validation.Field(&r.Content, contentRules...),
		validation.Field(&r.Tags, tagRules...),
	)
}

// CreateReviewWithBookRequest - POST /api/reviews/with-book
// Hoặc book_id, hoặc book_title + (author_id | author_name)
type CreateReviewWithBookRequest struct {
	BookID *uuid.UUID `json:"book_id,omitempty"`

	BookTitle       *string    `json:"book_title,omitempty"`
	AuthorID        *uuid.UUID `json:"author_id,omitempty"`
	AuthorName      *string    `json:"author_name,omitempty"`
	ISBN            *string    `json:"isbn,omitempty"`
	Genre           *string    `json:"genre,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`

	Rating         int      `json:"rating"`
	Content        string   `json:"content"`
	Tags           []string `json:"tags"`
	SpoilerWarning bool     `json:"spoiler_warning"`
}

// ReviewPart tách phần review; BookID được điền sau khi resolve book
func (r CreateReviewWithBookRequest) ReviewPart(bookID uuid.UUID) CreateReviewRequest {
	return CreateReviewRequest{
		BookID:         bookID,
		Rating:         r.Rating,
		Content:        r.Content,
		Tags:           r.Tags,
		SpoilerWarning: r.SpoilerWarning,
	}
}

func (r *CreateReviewWithBookRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
	r.Tags = normalizeTags(r.Tags)
}

// Validate kiểm tra cả phần review trước khi resolve author/book,
// để request bị từ chối không để lại bản ghi catalog nào
func (r CreateReviewWithBookRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Rating, ratingRules...),
		validation.Field(&r.Content, contentRules...),
		validation.Field(&r.Tags, tagRules...),
	)
	if err != nil {
		return err
	}

	if r.BookID != nil {
		if *r.BookID == uuid.Nil {
			return validation.Errors{"book_id": errors.New("must be a valid UUID")}
		}
		return nil
	}
	if blank(r.BookTitle) {
		return fmt.Errorf("%w: book_id or book_title is required", ErrInvalidBookReference)
	}
	if r.AuthorID == nil && blank(r.AuthorName) {
		return fmt.Errorf("%w: author_id or author_name is required with book_title", ErrInvalidBookReference)
	}
	return nil
}

// UpdateReviewRequest - PUT /api/reviews/:id, mọi field đều optional
type UpdateReviewRequest struct {
	Rating         *int     `json:"rating,omitempty"`
	Content        *string  `json:"content,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	SpoilerWarning *bool    `json:"spoiler_warning,omitempty"`
}

// Normalize trims content ("   " trở thành rỗng và bị Validate chặn)
func (r *UpdateReviewRequest) Normalize() {
	if r.Content != nil {
		content := strings.TrimSpace(*r.Content)
		r.Content = &content
	}
	r.Tags = normalizeTags(r.Tags)
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.NilOrNotEmpty, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.RuneLength(1, MaxContentLength)),
		validation.Field(&r.Tags, tagRules...),
	)
}

// Apply ghi các field được gửi lên vào review; gọi sau Normalize
func (r UpdateReviewRequest) Apply(review *Review) {
	if r.Rating != nil {
		review.Rating = *r.Rating
	}
	if r.Content != nil {
		review.Content = *r.Content
	}
	if r.Tags != nil {
		review.Tags = r.Tags
	}
	if r.SpoilerWarning != nil {
		review.SpoilerWarning = *r.SpoilerWarning
	}
}

// ========================================
// RESPONSE
// ========================================

type ReviewResponse struct {
	ID             uuid.UUID `json:"id"`
	BookID         uuid.UUID `json:"book_id"`
	UserID         uuid.UUID `json:"user_id"`
	Rating         int       `json:"rating"`
	Content        string    `json:"content"`
	Tags           []string  `json:"tags"`
	SpoilerWarning bool      `json:"spoiler_warning"`
	HelpfulCount   int       `json:"helpful_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateReviewWithBookResponse cho biết book/author có được tạo mới hay resolve từ cái đã có
type CreateReviewWithBookResponse struct {
	Review        ReviewResponse `json:"review"`
	BookID        uuid.UUID      `json:"book_id"`
	BookCreated   bool           `json:"book_created"`
	AuthorID      *uuid.UUID     `json:"author_id,omitempty"`
	AuthorCreated bool           `json:"author_created"`
}

// RatingResponse - GET /api/books/:id/rating
type RatingResponse struct {
	BookID        uuid.UUID `json:"book_id"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
}

// ReviewedResponse - GET /api/users/me/reviewed/:bid
type ReviewedResponse struct {
	Reviewed bool       `json:"reviewed"`
	ReviewID *uuid.UUID `json:"review_id"`
}

// ========================================
// helpers
// ========================================

// Rules dùng chung cho create, create-with-book và update
var (
	ratingRules  = []validation.Rule{validation.Required, validation.Min(MinRating), validation.Max(MaxRating)}
	contentRules = []validation.Rule{validation.Required, validation.RuneLength(1, MaxContentLength)}
	tagRules     = []validation.Rule{validation.Length(0, MaxTags), validation.Each(validation.RuneLength(1, MaxTagLength))}
)

func notNilUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// normalizeTags trims, lowercases and drops empty or repeated tags, keeping order.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
