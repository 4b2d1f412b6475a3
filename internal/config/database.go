package config

import (
	"fmt"
	"strconv"
	"time"

	"bookshelf-backend/internal/infrastructure/database"
)

// envParser gom lỗi parse đầu tiên để LoadDatabaseConfig không phải check từng biến
type envParser struct {
	err error
}

func (p *envParser) int(key, fallback string) int {
	raw := getEnv(key, fallback)
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	return v
}

func (p *envParser) duration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	return v
}

// LoadDatabaseConfig đọc DB_* từ environment
func LoadDatabaseConfig() (*database.DBConfig, error) {
	p := &envParser{}

	cfg := &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              p.int("DB_PORT", "5432"),
		Username:          getEnv("DB_USER", "bookshelf"),
		Password:          getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "bookshelf_dev"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(p.int("DB_MAX_CONNECTIONS", "25")),
		MinConns:          int32(p.int("DB_MIN_CONNECTIONS", "5")),
		MaxConnLifetime:   p.duration("DB_MAX_CONN_LIFETIME", "5m"),
		MaxConnIdleTime:   p.duration("DB_MAX_CONN_IDLE_TIME", "1m"),
		HealthCheckPeriod: p.duration("DB_HEALTH_CHECK_PERIOD", "1m"),
		MaxRetries:        p.int("DB_MAX_RETRIES", "5"),
		RetryDelay:        p.duration("DB_RETRY_DELAY", "1s"),
		ConnectTimeout:    p.duration("DB_CONNECT_TIMEOUT", "10s"),
	}
	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}
