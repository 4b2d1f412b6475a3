package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/config"
	"bookshelf-backend/internal/dedup"
	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/infrastructure/database"
	"bookshelf-backend/internal/infrastructure/messaging"
	"bookshelf-backend/internal/infrastructure/metrics"
	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/infrastructure/storage"
	"bookshelf-backend/pkg/cache"
	"bookshelf-backend/pkg/jwt"

	"bookshelf-backend/internal/domains/author"
	authorHandler "bookshelf-backend/internal/domains/author/handler"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	authorService "bookshelf-backend/internal/domains/author/service"
	bookHandler "bookshelf-backend/internal/domains/book/handler"
	bookRepo "bookshelf-backend/internal/domains/book/repository"
	bookService "bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/domains/feed"
	feedHandler "bookshelf-backend/internal/domains/feed/handler"
	feedRepo "bookshelf-backend/internal/domains/feed/repository"
	feedService "bookshelf-backend/internal/domains/feed/service"
	"bookshelf-backend/internal/domains/health"
	healthHandler "bookshelf-backend/internal/domains/health/handler"
	healthService "bookshelf-backend/internal/domains/health/service"
	"bookshelf-backend/internal/domains/post"
	postHandler "bookshelf-backend/internal/domains/post/handler"
	postRepo "bookshelf-backend/internal/domains/post/repository"
	postService "bookshelf-backend/internal/domains/post/service"
	"bookshelf-backend/internal/domains/profile"
	profileHandler "bookshelf-backend/internal/domains/profile/handler"
	profileRepo "bookshelf-backend/internal/domains/profile/repository"
	profileService "bookshelf-backend/internal/domains/profile/service"
	reviewHandler "bookshelf-backend/internal/domains/review/handler"
	reviewModel "bookshelf-backend/internal/domains/review/model"
	reviewRepo "bookshelf-backend/internal/domains/review/repository"
	reviewService "bookshelf-backend/internal/domains/review/service"
	"bookshelf-backend/internal/domains/user"
	userHandler "bookshelf-backend/internal/domains/user/handler"
	userRepo "bookshelf-backend/internal/domains/user/repository"
	userService "bookshelf-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency của API và worker.
// Redis, Kafka và MinIO không critical: lỗi kết nối chỉ log warning.
type Container struct {
	// ========================================
	// INFRASTRUCTURE
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Publisher  messaging.Publisher
	Queue      *queue.Client
	Storage    *storage.MinIOStorage // nil khi MinIO tắt hoặc không kết nối được

	// ========================================
	// REPOSITORIES
	// ========================================
	UserRepo    user.Repository
	AuthorRepo  author.Repository
	BookRepo    bookRepo.RepositoryInterface
	ReviewRepo  reviewRepo.ReviewRepository
	PostRepo    post.Repository
	ProfileRepo profile.Repository
	FeedStore   feed.Store

	// ========================================
	// SERVICES
	// ========================================
	UserService    user.Service
	AuthorService  author.Service
	BookService    *bookService.BookService
	ImportService  bookService.ImportServiceInterface
	CoverService   bookService.CoverServiceInterface
	ReviewService  reviewService.ServiceInterface
	PostService    post.Service
	ProfileService profile.Service
	FeedService    feed.Service
	HealthService  health.Service

	// ========================================
	// HANDLERS
	// ========================================
	UserHandler    *userHandler.UserHandler
	AuthorHandler  *authorHandler.AuthorHandler
	BookHandler    *bookHandler.Handler
	ReviewHandler  *reviewHandler.ReviewHandler
	PostHandler    *postHandler.PostHandler
	ProfileHandler *profileHandler.ProfileHandler
	FeedHandler    *feedHandler.FeedHandler
	HealthHandler  *healthHandler.HealthHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer dựng dependency graph theo thứ tự:
// config → infrastructure → repositories → services → handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("[CONTAINER] Initializing")

	c := &Container{}

	// ----------------------------------------
	// STEP 1: CONFIG
	// ----------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] Config loaded")

	// ----------------------------------------
	// STEP 2: INFRASTRUCTURE
	// ----------------------------------------
	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ----------------------------------------
	// STEP 3-5: REPOSITORIES, SERVICES, HANDLERS
	// ----------------------------------------
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[CONTAINER] Initialized successfully")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	// Postgres là dependency duy nhất bắt buộc
	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if cfg.App.RunMigrations {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Redis
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[REDIS] Connection failed (non-critical), cache degrades to the database")
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Metrics
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)

	// Kafka
	if cfg.Kafka.Enabled {
		c.Publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, c.Metrics)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("[KAFKA] Publisher ready")
	} else {
		c.Publisher = messaging.NoopPublisher{}
		log.Info().Msg("[KAFKA] Disabled, events are dropped")
	}

	// Asynq
	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	// MinIO
	if cfg.MinIO.Enabled {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("[MINIO] Unavailable (non-critical), covers will not be mirrored")
		} else {
			c.Storage = s
		}
	}

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.AuthorRepo = authorRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresReviewRepository(pool)
	c.PostRepo = postRepo.NewPostgresRepository(pool)
	c.ProfileRepo = profileRepo.NewPostgresRepository(pool)
	c.FeedStore = feedRepo.NewRedisStore(c.Redis.Client, c.Config.Feed.GlobalLimit, c.Config.Feed.UserLimit)
}

func (c *Container) initServices() {
	cfg := c.Config

	// interface nil thật sự khi MinIO tắt, không phải (*MinIOStorage)(nil)
	var objectStore storage.ObjectStore
	if c.Storage != nil {
		objectStore = c.Storage
	}

	authorResolver := dedup.NewResolver(dedup.Options{
		Fuzzy:     cfg.Dedup.FuzzyAuthors,
		Threshold: cfg.Dedup.AuthorThreshold,
	})
	titleResolver := dedup.NewResolver(dedup.Options{
		Fuzzy:     cfg.Dedup.FuzzyTitles,
		Threshold: cfg.Dedup.TitleThreshold,
	})

	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, authorResolver, c.Cache, cfg.Cache.AuthorTTL, c.Metrics)

	c.BookService = bookService.NewService(c.BookRepo, titleResolver, c.Queue, objectStore, c.Metrics)
	c.ImportService = bookService.NewImportService(c.BookService, c.AuthorService)
	c.CoverService = bookService.NewCoverService(c.BookRepo, objectStore, storage.NewImageProcessor(), c.Metrics)

	existence := cache.NewExistenceCache(c.Cache, cache.ExistenceOptions{
		PresentSuffix: reviewModel.ExistencePresentSuffix,
		AbsentSuffix:  reviewModel.ExistenceAbsentSuffix,
		PresentTTL:    cfg.Cache.ReviewPresentTTL,
		AbsentTTL:     cfg.Cache.ReviewAbsentTTL,
		OnCheck: func(p cache.Presence) {
			c.Metrics.RecordExistenceCheck(p.String())
		},
	})
	c.ReviewService = reviewService.NewReviewService(
		c.ReviewRepo,
		c.BookService,
		c.AuthorService,
		existence,
		c.Publisher,
		cfg.Kafka.ReviewsTopic,
	)
	c.BookService.OnDelete(c.ReviewService.ForgetBook)

	c.PostService = postService.NewPostService(c.PostRepo, c.Publisher, cfg.Kafka.PostsTopic)
	c.ProfileService = profileService.NewProfileService(c.ProfileRepo)
	c.FeedService = feedService.NewFeedService(c.FeedStore, c.Metrics, cfg.Kafka.Enabled)
	c.HealthService = healthService.NewHealthService(healthService.DefaultCheckTimeout, c.healthDependencies()...)
}

// healthDependencies: postgres và redis quyết định /ready
func (c *Container) healthDependencies() []health.Dependency {
	deps := []health.Dependency{
		{Name: "postgres", Critical: true, Check: c.DB.HealthCheck, Details: c.poolStats},
		{Name: "redis", Critical: true, Check: c.Redis.HealthCheck},
		{Name: "kafka"},
		{Name: "minio"},
	}

	if c.Config.Kafka.Enabled {
		brokers := c.Config.Kafka.Brokers
		deps[2].Check = func(ctx context.Context) error {
			return messaging.PingBrokers(ctx, brokers)
		}
	}
	if c.Storage != nil {
		deps[3].Check = c.Storage.HealthCheck
	}
	return deps
}

func (c *Container) poolStats() any {
	stats, err := c.DB.Stats()
	if err != nil {
		return nil
	}
	return stats
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewHandler(c.BookService, c.ImportService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.PostHandler = postHandler.NewPostHandler(c.PostService)
	c.ProfileHandler = profileHandler.NewProfileHandler(c.ProfileService)
	c.FeedHandler = feedHandler.NewFeedHandler(c.FeedService)
	c.HealthHandler = healthHandler.NewHealthHandler(c.HealthService, c.Config.App.Name, c.Config.App.Version)
}

// Cleanup đóng các kết nối, gọi khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up")

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("[KAFKA] Failed to close publisher")
		}
	}
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Warn().Err(err).Msg("[QUEUE] Failed to close client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[REDIS] Failed to close")
		}
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}
