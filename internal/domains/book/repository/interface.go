package repository

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/dedup"
	"bookshelf-backend/internal/domains/book/model"
)

// RepositoryInterface - Định nghĩa data access methods
type RepositoryInterface interface {
	// TitleSource trả về dedup.Source chỉ chứa sách của một author
	TitleSource(authorID uuid.UUID) dedup.Source

	// Create: ErrDuplicateISBN / ErrDuplicateTitle / ErrAuthorNotFound theo constraint bị vi phạm
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	UpdateCoverURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	AuthorExists(ctx context.Context, authorID uuid.UUID) (bool, error)

	AutocompleteTitles(ctx context.Context, q string, limit int) ([]string, error)
	SearchByTitle(ctx context.Context, q string, limit int) ([]model.BookWithAuthor, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]model.BookWithAuthor, error)
	List(ctx context.Context, limit, skip int) ([]model.BookWithAuthor, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]model.BookWithAuthor, error)
}
