package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"bookshelf-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, password string, db int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

// ================================================
// JOB: Audit duplicate authors (mặc định 3h sáng hằng ngày)
// ================================================
func (s *Scheduler) RegisterAuditDuplicates(cronspec string) error {
	payload, err := json.Marshal(shared.AuditDuplicatesPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeAuditDuplicateAuthors, payload)
	entryID, err := s.scheduler.Register(
		cronspec,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", shared.TypeAuditDuplicateAuthors, err)
	}

	log.Info().Str("entry_id", entryID).Str("cron", cronspec).Msg("[Scheduler] Registered duplicate author audit")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
