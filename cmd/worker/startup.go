package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/pkg/container"
)

// checkDependencies chạy trước khi worker nhận task: asynq cần Redis
func checkDependencies(c *container.Container) error {
	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Redis", c.Redis.HealthCheck},
		{"PostgreSQL", c.DB.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("[Startup] Health check failed")
			return fmt.Errorf("%s: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("[Startup] OK")
	}
	return nil
}

// startHealthServer: /health, /ready và /metrics của worker
func startHealthServer(c *container.Container, port string) *http.Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.GET("/health", c.HealthHandler.Liveness)
	router.GET("/ready", c.HealthHandler.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("[Health] Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("[Health] Server failed")
		}
	}()
	return srv
}
