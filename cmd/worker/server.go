package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared"
)

// asynqServer wraps asynq.Server
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer tạo server và chạy nó trong goroutine
func setupAsynqServer(cfg *Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueHigh:    20,
				shared.QueueDefault: 10,
				shared.QueueLow:     5,
			},
			Concurrency: cfg.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().
					Err(err).
					Str("type", task.Type()).
					Int("retried", retried).
					Int("max_retry", maxRetry).
					Msg("[Asynq] Task failed")
			}),
		},
	)

	go func() {
		log.Info().Msg("[Worker] Starting")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown chờ các task đang chạy xong (asynq tự giới hạn bằng ShutdownTimeout)
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] Stopped")
}
