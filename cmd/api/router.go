package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.Metrics(c.Metrics),
	)

	setupHealthRoutes(router, c)

	api := router.Group("/api")
	{
		setupAuthRoutes(api, c)
		setupAuthorRoutes(api, c)
		setupBookRoutes(api, c)
		setupReviewRoutes(api, c)
		setupPostRoutes(api, c)
		setupProfileRoutes(api, c)
		setupFeedRoutes(api, c)
	}

	return router
}

// ========================================
// HEALTH + METRICS
// ========================================
func setupHealthRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/health", c.HealthHandler.Liveness)
	router.GET("/ready", c.HealthHandler.Readiness)
	router.GET("/health/db", c.HealthHandler.Database)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	status := router.Group("/api/health")
	{
		status.GET("/status", c.HealthHandler.Status)
		status.GET("/services", c.HealthHandler.Services)
		status.GET("/services/:name", c.HealthHandler.ServiceByName)
	}
}

// ========================================
// AUTH ROUTES (rate limited theo IP)
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	limiter := middleware.NewIPRateLimiter(c.Config.RateLimit.AuthRPS, c.Config.RateLimit.AuthBurst)

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(limiter))
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.GET("/validate", c.UserHandler.Validate)
	}
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(api *gin.RouterGroup, c *container.Container) {
	requireAuth := middleware.AuthMiddleware(c.JWTManager)

	authors := api.Group("/authors")
	{
		authors.POST("", requireAuth, c.AuthorHandler.Create)
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/search", c.AuthorHandler.Search)
		authors.GET("/resolve", c.AuthorHandler.Resolve)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.GET("/:id/books", c.BookHandler.ListByAuthor)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	requireAuth := middleware.AuthMiddleware(c.JWTManager)

	books := api.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/titles/autocomplete", c.BookHandler.Autocomplete)
		books.GET("/search-by-title", c.BookHandler.SearchByTitle)
		books.GET("/search", c.BookHandler.SearchBooks)
		books.GET("/export", c.BookHandler.ExportBooks)
		books.GET("/:id", c.BookHandler.GetBook)

		books.POST("", requireAuth, c.BookHandler.CreateBook)
		books.POST("/import", requireAuth, c.BookHandler.ImportBooks)
		books.PUT("/:id", requireAuth, c.BookHandler.UpdateBook)
		books.DELETE("/:id", requireAuth, c.BookHandler.DeleteBook)

		// Reviews theo sách
		books.GET("/:id/reviews", c.ReviewHandler.ListBookReviews)
		books.GET("/:id/rating", c.ReviewHandler.GetBookRating)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(api *gin.RouterGroup, c *container.Container) {
	requireAuth := middleware.AuthMiddleware(c.JWTManager)

	reviews := api.Group("/reviews")
	{
		reviews.GET("/:id", c.ReviewHandler.GetReview)

		reviews.POST("", requireAuth, c.ReviewHandler.CreateReview)
		reviews.POST("/with-book", requireAuth, c.ReviewHandler.CreateReviewWithBook)
		reviews.PUT("/:id", requireAuth, c.ReviewHandler.UpdateReview)
		reviews.DELETE("/:id", requireAuth, c.ReviewHandler.DeleteReview)
		reviews.POST("/:id/mark-helpful", requireAuth, c.ReviewHandler.MarkHelpful)
	}

	users := api.Group("/users")
	{
		users.GET("/me/reviewed/:bid", requireAuth, c.ReviewHandler.HasReviewed)
		users.GET("/:uid/review-of/:bid", c.ReviewHandler.GetUserReviewOfBook)
	}
}

// ========================================
// POST ROUTES
// ========================================
func setupPostRoutes(api *gin.RouterGroup, c *container.Container) {
	requireAuth := middleware.AuthMiddleware(c.JWTManager)

	posts := api.Group("/posts")
	{
		posts.GET("", c.PostHandler.List)
		posts.GET("/:id", c.PostHandler.Get)

		posts.POST("", requireAuth, c.PostHandler.Create)
		posts.PUT("/:id", requireAuth, c.PostHandler.Update)
		posts.DELETE("/:id", requireAuth, c.PostHandler.Delete)
	}
}

// ========================================
// PROFILE ROUTES (keyed by token user)
// ========================================
func setupProfileRoutes(api *gin.RouterGroup, c *container.Container) {
	profile := api.Group("/profile")
	profile.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		profile.POST("", c.ProfileHandler.Create)
		profile.GET("", c.ProfileHandler.Get)
		profile.PUT("", c.ProfileHandler.Update)
		profile.DELETE("", c.ProfileHandler.Delete)
	}
}

// ========================================
// FEED ROUTES
// ========================================
func setupFeedRoutes(api *gin.RouterGroup, c *container.Container) {
	stream := api.Group("/activity-stream")
	stream.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		stream.GET("", c.FeedHandler.Global)
		stream.GET("/user", c.FeedHandler.Mine)
		stream.GET("/stats", c.FeedHandler.Stats)
	}
}
