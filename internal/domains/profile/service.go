package profile

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req ProfileRequest) (*ProfileResponse, error)
	Get(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error)
	Update(ctx context.Context, userID uuid.UUID, req ProfileRequest) (*ProfileResponse, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}
