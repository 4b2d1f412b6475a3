package author

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	// Create dedups the submitted name and only inserts when nothing matches
	Create(ctx context.Context, req CreateAuthorRequest, createdBy *uuid.UUID) (*CreateAuthorResponse, error)
	// FindOrCreate is used by book import and review-with-book
	FindOrCreate(ctx context.Context, rawName string, createdBy *uuid.UUID) (*Author, bool, error)
	Resolve(ctx context.Context, rawName string) (*ResolveResponse, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Author, error)
	List(ctx context.Context, limit, skip int) ([]Author, int, error)
	Search(ctx context.Context, query string, limit int) ([]Author, error)

	AuditDuplicates(ctx context.Context) (*AuditReport, error)
}
