package post

import (
	"context"

	"github.com/google/uuid"
)

// Repository là data access contract của bảng posts
type Repository interface {
	Create(ctx context.Context, p *Post) error
	// FindByID trả về ErrPostNotFound nếu không có
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List sorts newest first
	List(ctx context.Context, filter ListFilter) ([]Post, error)
}
