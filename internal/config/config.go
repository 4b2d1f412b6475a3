package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bookshelf-backend/internal/infrastructure/database"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App       AppConfig
	Database  *database.DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	MinIO     MinIOConfig
	Cache     CacheConfig
	Dedup     DedupConfig
	Feed      FeedConfig
	Worker    WorkerConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	// RunMigrations applies embedded SQL migrations on API startup.
	RunMigrations bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	ReviewsTopic string
	PostsTopic   string
	FeedGroupID  string
}

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CacheConfig struct {
	ReviewPresentTTL time.Duration
	ReviewAbsentTTL  time.Duration
	AuthorTTL        time.Duration
}

// DedupConfig controls name resolution for authors and book titles.
type DedupConfig struct {
	FuzzyAuthors    bool
	AuthorThreshold float64
	FuzzyTitles     bool
	TitleThreshold  float64
}

type FeedConfig struct {
	GlobalLimit int64
	UserLimit   int64
}

type WorkerConfig struct {
	Concurrency        int
	HealthPort         string
	AuditDuplicateCron string
}

type RateLimitConfig struct {
	AuthRPS   float64
	AuthBurst int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "Bookshelf API"),
			Environment:   getEnv("APP_ENV", "development"),
			Port:          getEnv("APP_PORT", "8080"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		},
		Database: dbConfig,
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Enabled:      getEnvBool("KAFKA_ENABLED", true),
			Brokers:      getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			ReviewsTopic: getEnv("KAFKA_REVIEWS_TOPIC", "reviews-events"),
			PostsTopic:   getEnv("KAFKA_POSTS_TOPIC", "posts-events"),
			FeedGroupID:  getEnv("KAFKA_FEED_GROUP", "feed-generator"),
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", true),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "bookshelf"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Cache: CacheConfig{
			ReviewPresentTTL: getEnvDuration("CACHE_REVIEW_PRESENT_TTL", time.Hour),
			ReviewAbsentTTL:  getEnvDuration("CACHE_REVIEW_ABSENT_TTL", 5*time.Minute),
			AuthorTTL:        getEnvDuration("CACHE_AUTHOR_TTL", 15*time.Minute),
		},
		Dedup: DedupConfig{
			FuzzyAuthors:    getEnvBool("DEDUP_FUZZY_AUTHORS", true),
			AuthorThreshold: getEnvFloat("DEDUP_AUTHOR_THRESHOLD", 0.6),
			FuzzyTitles:     getEnvBool("DEDUP_FUZZY_TITLES", true),
			TitleThreshold:  getEnvFloat("DEDUP_TITLE_THRESHOLD", 0.85),
		},
		Feed: FeedConfig{
			GlobalLimit: int64(getEnvInt("FEED_GLOBAL_LIMIT", 1000)),
			UserLimit:   int64(getEnvInt("FEED_USER_LIMIT", 100)),
		},
		Worker: WorkerConfig{
			Concurrency:        getEnvInt("WORKER_CONCURRENCY", 20),
			HealthPort:         getEnv("WORKER_HEALTH_PORT", "9999"),
			AuditDuplicateCron: getEnv("AUDIT_DUPLICATES_CRON", "0 3 * * *"),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
			AuthBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Dedup.AuthorThreshold <= 0 || c.Dedup.AuthorThreshold >= 1 {
		return fmt.Errorf("DEDUP_AUTHOR_THRESHOLD must be in (0,1), got %v", c.Dedup.AuthorThreshold)
	}
	if c.Dedup.TitleThreshold <= 0 || c.Dedup.TitleThreshold >= 1 {
		return fmt.Errorf("DEDUP_TITLE_THRESHOLD must be in (0,1), got %v", c.Dedup.TitleThreshold)
	}
	if c.Feed.GlobalLimit <= 0 || c.Feed.UserLimit <= 0 {
		return fmt.Errorf("feed limits must be positive")
	}

	// Production environment phải có JWT secret
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database == nil || c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
