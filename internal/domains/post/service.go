package post

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreatePostRequest) (*PostResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*PostResponse, error)
	List(ctx context.Context, filter ListFilter) ([]PostResponse, error)
	// Update và Delete trả về ErrForbidden khi userID không phải owner
	Update(ctx context.Context, userID, id uuid.UUID, req UpdatePostRequest) (*PostResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
