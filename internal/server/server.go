// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"mutuals/internal/cache"
	"mutuals/internal/config"
	"mutuals/internal/database"
	"mutuals/internal/middleware"
	"mutuals/internal/repository"
	"mutuals/internal/secrets"
	"mutuals/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config     *config.Config
	db         *gorm.DB
	redis      *redis.Client
	cipher     *secrets.Cipher
	userRepo   repository.UserRepository
	friendSvc  *service.FriendService
	blockSvc   *service.BlockService
	emitter    *service.Emitter
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.Connect(cfg.RedisURL)

	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		// Contact fields still need a cipher in development; generate an
		// ephemeral key and warn.
		encryptionKey, err = secrets.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("generating ephemeral encryption key: %w", err)
		}
		log.Println("WARNING: ENCRYPTION_KEY not set; using an ephemeral key (encrypted fields will not survive restart)")
	}
	cipher, err := secrets.NewCipher(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid ENCRYPTION_KEY: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	emitter := service.NewEmitter(activityRepo, notificationRepo)

	return &Server{
		config:    cfg,
		db:        db,
		redis:     redisClient,
		cipher:    cipher,
		userRepo:  userRepo,
		friendSvc: service.NewFriendService(db, relRepo, userRepo, emitter),
		blockSvc:  service.NewBlockService(relRepo, userRepo),
		emitter:   emitter,
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Prometheus HTTP metrics
	prometheus := fiberprometheus.New("mutuals")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/search", middleware.RateLimit(s.redis, 10, time.Minute, "search"), s.SearchUsers)

	// Friend routes
	friends := protected.Group("/friends")
	friends.Get("/", middleware.RateLimit(s.redis, 10, time.Minute, "friends"), s.GetFriends)
	// Specific /requests routes before generic /:userId
	friends.Post("/requests/:userId", middleware.RateLimit(s.redis, 3, time.Minute, "friend_request"), s.SendFriendRequest)
	friends.Get("/requests", middleware.RateLimit(s.redis, 5, time.Minute, "pending_requests"), s.GetPendingRequests)
	friends.Put("/requests/:requestId", middleware.RateLimit(s.redis, 5, time.Minute, "respond_request"), s.RespondFriendRequest)

	// Block routes
	blocks := protected.Group("/blocks")
	blocks.Post("/:userId", middleware.RateLimit(s.redis, 5, time.Minute, "block"), s.BlockUser)
	blocks.Delete("/:userId", middleware.RateLimit(s.redis, 5, time.Minute, "unblock"), s.UnblockUser)

	// Activity and notification routes
	protected.Get("/activities", middleware.RateLimit(s.redis, 10, time.Minute, "activities"), s.GetActivities)
	protected.Get("/notifications", middleware.RateLimit(s.redis, 5, time.Minute, "notifications"), s.GetNotifications)
	protected.Put("/notifications/read", s.MarkNotificationsRead)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "mutuals",
		"status":  "healthy",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
