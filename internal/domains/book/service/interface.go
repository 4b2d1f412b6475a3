package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"bookshelf-backend/internal/domains/author"
	"bookshelf-backend/internal/domains/book/model"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	// CreateBook dedups the title within the author; Created=false means an existing book matched
	CreateBook(ctx context.Context, req model.CreateBookRequest, createdBy *uuid.UUID) (*model.CreateBookResponse, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error)
	DeleteBook(ctx context.Context, id uuid.UUID) (*model.DeleteBookResponse, error)

	ListBooks(ctx context.Context, limit, skip int) ([]model.BookResponse, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]model.BookResponse, error)
	AutocompleteTitles(ctx context.Context, q string, limit int) ([]string, error)
	SearchByTitle(ctx context.Context, q string, limit int) ([]model.BookResponse, error)
	SearchBooks(ctx context.Context, filter model.SearchFilter) ([]model.BookResponse, error)
	ExportBooksToExcel(ctx context.Context, filter model.SearchFilter) (*excelize.File, int, error)
}

// ImportServiceInterface - CSV import, author của mỗi dòng đi qua dedup resolver
type ImportServiceInterface interface {
	ImportBooks(ctx context.Context, r io.Reader, userID *uuid.UUID) (*model.ImportResult, error)
}

// CoverServiceInterface - dùng bởi job mirror cover
type CoverServiceInterface interface {
	MirrorCover(ctx context.Context, bookID uuid.UUID, sourceURL string) (string, error)
}

// AuthorResolver là phần của author.Service mà import cần
type AuthorResolver interface {
	FindOrCreate(ctx context.Context, rawName string, createdBy *uuid.UUID) (*author.Author, bool, error)
}
