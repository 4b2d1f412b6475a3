package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/book/model"
	bookService "bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/infrastructure/storage"
	"bookshelf-backend/internal/shared"
)

// MirrorCoverHandler xử lý task book:mirror_cover
type MirrorCoverHandler struct {
	coverService bookService.CoverServiceInterface
}

func NewMirrorCoverHandler(coverService bookService.CoverServiceInterface) *MirrorCoverHandler {
	return &MirrorCoverHandler{
		coverService: coverService,
	}
}

// ProcessTask: ảnh không hợp lệ hoặc book đã bị xóa thì không retry
func (h *MirrorCoverHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.MirrorCoverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal MirrorCover payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	bookID, err := uuid.Parse(payload.BookID)
	if err != nil || payload.SourceURL == "" {
		return fmt.Errorf("invalid payload for book %q: %w", payload.BookID, asynq.SkipRetry)
	}

	log.Info().
		Str("book_id", payload.BookID).
		Str("source_url", payload.SourceURL).
		Msg("Mirroring book cover")

	if _, err := h.coverService.MirrorCover(ctx, bookID, payload.SourceURL); err != nil {
		log.Error().
			Err(err).
			Str("book_id", payload.BookID).
			Msg("Failed to mirror book cover")

		if errors.Is(err, storage.ErrInvalidImage) || errors.Is(err, model.ErrBookNotFound) {
			return fmt.Errorf("mirror cover: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("mirror cover: %w", err)
	}

	return nil
}
