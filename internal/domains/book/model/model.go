package model

import (
	"time"

	"github.com/google/uuid"

	"bookshelf-backend/internal/dedup"
)

// Book - books table. TitleKey là match key của Title, unique trong phạm vi một author.
type Book struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	TitleKey        string     `json:"title_key"`
	AuthorID        uuid.UUID  `json:"author_id"`
	ISBN            *string    `json:"isbn,omitempty"`
	Genre           *string    `json:"genre,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CoverImageURL   *string    `json:"cover_image_url,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (b *Book) ToNamedEntity() dedup.NamedEntity {
	return dedup.NamedEntity{
		ID:          b.ID,
		DisplayForm: b.Title,
		MatchKey:    b.TitleKey,
		CreatedAt:   b.CreatedAt,
	}
}

// BookWithAuthor là row books JOIN authors
type BookWithAuthor struct {
	Book
	AuthorName string `json:"author_name"`
}

func (b *BookWithAuthor) ToResponse() BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		AuthorID:        b.AuthorID,
		Author:          AuthorSummary{ID: b.AuthorID, Name: b.AuthorName},
		ISBN:            b.ISBN,
		Genre:           b.Genre,
		Description:     b.Description,
		CoverImageURL:   b.CoverImageURL,
		PublicationYear: b.PublicationYear,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func ToResponses(books []BookWithAuthor) []BookResponse {
	out := make([]BookResponse, len(books))
	for i := range books {
		out[i] = books[i].ToResponse()
	}
	return out
}

// SearchFilter - GET /api/books/search và export
type SearchFilter struct {
	Query    string
	AuthorID *uuid.UUID
	Genre    string
	Limit    int
	Skip     int
}
