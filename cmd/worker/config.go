package main

import (
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/config"
)

// Config là phần config mà worker dùng, lấy từ config của container
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	HealthPort    string
	AuditCron     string

	FeedEnabled bool
	Brokers     []string
	PostsTopic  string
	FeedGroupID string
}

func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		RedisAddr:     app.Redis.Host,
		RedisPassword: app.Redis.Password,
		RedisDB:       app.Redis.DB,
		Concurrency:   app.Worker.Concurrency,
		HealthPort:    app.Worker.HealthPort,
		AuditCron:     app.Worker.AuditDuplicateCron,
		FeedEnabled:   app.Kafka.Enabled,
		Brokers:       app.Kafka.Brokers,
		PostsTopic:    app.Kafka.PostsTopic,
		FeedGroupID:   app.Kafka.FeedGroupID,
	}

	log.Info().
		Str("redis", cfg.RedisAddr).
		Int("concurrency", cfg.Concurrency).
		Bool("feed", cfg.FeedEnabled).
		Msg("[Config] Worker configuration loaded")
	return cfg
}
