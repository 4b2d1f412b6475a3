package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/author"
)

// AuditDuplicatesHandler chạy định kỳ (scheduler) và log các cặp author gần trùng tên.
// Không merge gì cả, chỉ báo cáo.
type AuditDuplicatesHandler struct {
	service author.Service
}

func NewAuditDuplicatesHandler(service author.Service) *AuditDuplicatesHandler {
	return &AuditDuplicatesHandler{service: service}
}

func (h *AuditDuplicatesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	report, err := h.service.AuditDuplicates(ctx)
	if err != nil {
		log.Error().Err(err).Str("task", task.Type()).Msg("Duplicate author audit failed")
		return fmt.Errorf("audit duplicates: %w", err)
	}

	for _, pair := range report.Duplicates {
		log.Warn().
			Str("first_id", pair.First.ID.String()).
			Str("first_name", pair.First.DisplayForm).
			Str("second_id", pair.Second.ID.String()).
			Str("second_name", pair.Second.DisplayForm).
			Float64("score", pair.Score).
			Msg("Possible duplicate authors")
	}

	log.Info().
		Int("checked", report.Checked).
		Int("duplicates", len(report.Duplicates)).
		Float64("threshold", report.Threshold).
		Msg("Duplicate author audit completed")
	return nil
}
