package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const (
	MaxTitleLength = 500
	MaxGenreLength = 100
	MinPubYear     = 0
	MaxPubYear     = 2100
)

// ========================================
// REQUEST
// ========================================

// CreateBookRequest - POST /api/books
type CreateBookRequest struct {
	Title           string    `json:"title"`
	AuthorID        uuid.UUID `json:"author_id"`
	ISBN            *string   `json:"isbn,omitempty"`
	Genre           *string   `json:"genre,omitempty"`
	Description     *string   `json:"description,omitempty"`
	CoverImageURL   *string   `json:"cover_image_url,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
}

// Normalize bỏ khoảng trắng và biến chuỗi rỗng thành nil
func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ISBN = trimOptional(r.ISBN)
	r.Genre = trimOptional(r.Genre)
	r.Description = trimOptional(r.Description)
	r.CoverImageURL = trimOptional(r.CoverImageURL)
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&r.AuthorID, validation.By(notNilUUID)),
		validation.Field(&r.ISBN, validation.RuneLength(10, 20)),
		validation.Field(&r.Genre, validation.RuneLength(0, MaxGenreLength)),
		validation.Field(&r.CoverImageURL, is.URL),
		validation.Field(&r.PublicationYear, validation.Min(MinPubYear), validation.Max(MaxPubYear)),
	)
}

// UpdateBookRequest - PUT /api/books/:id, mọi field đều optional
type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty"`
	AuthorID        *uuid.UUID `json:"author_id,omitempty"`
	ISBN            *string    `json:"isbn,omitempty"`
	Genre           *string    `json:"genre,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CoverImageURL   *string    `json:"cover_image_url,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`
}

func (r *UpdateBookRequest) Normalize() {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	r.ISBN = trimOptional(r.ISBN)
	r.Genre = trimOptional(r.Genre)
	r.Description = trimOptional(r.Description)
	r.CoverImageURL = trimOptional(r.CoverImageURL)
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&r.ISBN, validation.RuneLength(10, 20)),
		validation.Field(&r.Genre, validation.RuneLength(0, MaxGenreLength)),
		validation.Field(&r.CoverImageURL, is.URL),
		validation.Field(&r.PublicationYear, validation.Min(MinPubYear), validation.Max(MaxPubYear)),
	)
}

// ========================================
// RESPONSE
// ========================================

type AuthorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BookResponse struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	AuthorID        uuid.UUID     `json:"author_id"`
	Author          AuthorSummary `json:"author"`
	ISBN            *string       `json:"isbn,omitempty"`
	Genre           *string       `json:"genre,omitempty"`
	Description     *string       `json:"description,omitempty"`
	CoverImageURL   *string       `json:"cover_image_url,omitempty"`
	PublicationYear *int          `json:"publication_year,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CreateBookResponse: Created=false khi title khớp với sách đã có của cùng author
type CreateBookResponse struct {
	Book    BookResponse `json:"book"`
	Created bool         `json:"created"`
	Match   string       `json:"match"`
	Score   float64      `json:"score"`
}

type DeleteBookResponse struct {
	ID      uuid.UUID `json:"id"`
	Deleted bool      `json:"deleted"`
}

func notNilUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
