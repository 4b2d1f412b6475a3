package feed

import (
	"context"

	"bookshelf-backend/internal/infrastructure/messaging"
)

type Service interface {
	// HandleEvent là messaging.HandlerFunc cho consumer posts-events
	HandleEvent(ctx context.Context, event messaging.Event) error

	Global(ctx context.Context, skip, limit int) (*Page, error)
	ForUser(ctx context.Context, userID string, skip, limit int) (*Page, error)
	Stats(ctx context.Context) Stats
}
