package model

import "github.com/google/uuid"

// ImportColumns là header bắt buộc của file CSV import (thứ tự không quan trọng)
var ImportColumns = []string{
	"title",
	"author_name",
	"isbn",
	"genre",
	"publication_year",
	"description",
	"cover_image_url",
}

// CSVBookRow là một dòng đã parse; Row bắt đầu từ 2 (dòng 1 là header)
type CSVBookRow struct {
	Row             int
	Title           string
	AuthorName      string
	ISBN            *string
	Genre           *string
	PublicationYear *int
	Description     *string
	CoverImageURL   *string
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ImportedBook struct {
	Row           int       `json:"row"`
	BookID        uuid.UUID `json:"book_id"`
	Title         string    `json:"title"`
	AuthorID      uuid.UUID `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Created       bool      `json:"created"`
	AuthorCreated bool      `json:"author_created"`
}

// ImportResult: các dòng lỗi không chặn các dòng còn lại
type ImportResult struct {
	TotalRows      int              `json:"total_rows"`
	CreatedBooks   int              `json:"created_books"`
	ExistingBooks  int              `json:"existing_books"`
	CreatedAuthors int              `json:"created_authors"`
	FailedRows     int              `json:"failed_rows"`
	Books          []ImportedBook   `json:"books"`
	Errors         []ImportRowError `json:"errors,omitempty"`
}
