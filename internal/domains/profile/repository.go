package profile

import (
	"context"

	"github.com/google/uuid"
)

// Repository: mọi truy vấn đều theo user_id của token
type Repository interface {
	// Create trả về ErrProfileExists khi vi phạm unique(user_id)
	Create(ctx context.Context, p *Profile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
