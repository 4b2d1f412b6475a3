package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DBConfig gom các tham số kết nối PostgreSQL và cấu hình pool
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string
	SSLMode  string

	// Connection pool
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// Retry
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
}

// DSN trả về connection string dạng URL, dùng chung cho pgxpool và golang-migrate
func (c *DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// PostgresDB quản lý pgxpool và vòng đời kết nối
type PostgresDB struct {
	Pool   *pgxpool.Pool
	Config *DBConfig
}

func NewPostgresDB(config *DBConfig) *PostgresDB {
	return &PostgresDB{Config: config}
}

func (db *PostgresDB) poolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(db.Config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	cfg.MaxConns = db.Config.MaxConns
	cfg.MinConns = db.Config.MinConns
	cfg.MaxConnLifetime = db.Config.MaxConnLifetime
	cfg.MaxConnIdleTime = db.Config.MaxConnIdleTime
	cfg.HealthCheckPeriod = db.Config.HealthCheckPeriod
	cfg.ConnConfig.ConnectTimeout = db.Config.ConnectTimeout

	return cfg, nil
}

// Connect mở pool với exponential backoff: delay = RetryDelay * 2^(attempt-1)
func (db *PostgresDB) Connect(ctx context.Context) error {
	log.Info().
		Str("host", db.Config.Host).
		Str("database", db.Config.DBName).
		Msg("[DATABASE] Initializing PostgreSQL connection")

	cfg, err := db.poolConfig()
	if err != nil {
		return fmt.Errorf("pool configuration failed: %w", err)
	}

	attempts := db.Config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := db.tryConnect(ctx, cfg)
		if err == nil {
			db.Pool = pool
			log.Info().Int("attempt", attempt).Msg("[DATABASE] PostgreSQL connection established")
			return nil
		}
		lastErr = err

		log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("[DATABASE] Connection attempt failed")

		if attempt == attempts {
			break
		}

		delay := db.Config.RetryDelay * time.Duration(1<<uint(attempt-1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("connection cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("failed to connect after %d attempts: %w", attempts, lastErr)
}

func (db *PostgresDB) tryConnect(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(ctx, db.Config.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// HealthCheck ping database và log pool statistics
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return err
	}

	stats := db.Pool.Stat()
	log.Debug().
		Int32("total", stats.TotalConns()).
		Int32("idle", stats.IdleConns()).
		Int32("acquired", stats.AcquiredConns()).
		Msg("[DATABASE] Health check passed")

	return nil
}
