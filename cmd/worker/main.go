package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/pkg/container"
	"bookshelf-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(getEnv("APP_ENV", "development"), getEnv("LOG_LEVEL", "info"))
	gin.SetMode(gin.ReleaseMode)

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	cfg := loadConfig(c.Config)

	if err := checkDependencies(c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Dependencies not ready")
	}

	handlers := initializeHandlers(c)
	srv := setupAsynqServer(cfg, handlers)
	scheduler := setupScheduler(cfg)
	feed := startFeedConsumer(c, cfg)
	healthSrv := startHealthServer(c, cfg.HealthPort)

	logger.Info("[Worker] Bookshelf worker started", map[string]interface{}{
		"concurrency": cfg.Concurrency,
		"health_port": cfg.HealthPort,
		"feed":        cfg.FeedEnabled,
	})
	waitForShutdown(srv, scheduler, feed, healthSrv)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler, feed *feedConsumer, healthSrv *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping")
	scheduler.Shutdown()
	feed.Shutdown()
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(ctx); err != nil {
		logger.Warn("[Health] Forced shutdown", map[string]interface{}{"error": err.Error()})
	}
	log.Info().Msg("[Shutdown] Stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
