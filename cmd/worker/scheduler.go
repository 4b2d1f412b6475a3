package main

import (
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/infrastructure/queue"
)

// asynqScheduler wraps queue.Scheduler
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	if err := scheduler.RegisterAuditDuplicates(cfg.AuditCron); err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] Failed to register")
	}

	go func() {
		log.Info().Msg("[Scheduler] Starting")
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("[Scheduler] Failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("[Scheduler] Shutting down")
	s.Scheduler.Shutdown()
	log.Info().Msg("[Scheduler] Stopped")
}
