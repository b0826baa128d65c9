// Package server contains the HTTP handlers for the blogging API.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// metricsMiddleware returns the process-wide Prometheus middleware. Created
// once because collectors can only be registered a single time.
func metricsMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New("inkwell-api")
	})
	return promMW
}

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo     repository.UserRepository
	blogRepo     repository.BlogRepository
	categoryRepo repository.CategoryRepository
	tokenRepo    repository.TokenRepository

	authService  *service.AuthService
	blogService  *service.BlogService
	userService  *service.UserService
	imageService *service.ImageService
}

// NewServer creates a server instance and connects its dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap code that seeds the database first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: metricsMiddleware(),
		userRepo:       repository.NewUserRepository(db),
		blogRepo:       repository.NewBlogRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		tokenRepo:      repository.NewTokenRepository(db),
	}
	s.authService = service.NewAuthService(s.userRepo, s.tokenRepo, cfg)
	s.blogService = service.NewBlogService(s.blogRepo, s.userRepo, s.categoryRepo)
	s.userService = service.NewUserService(s.userRepo)
	s.imageService = service.NewImageService(cfg.UploadDir, cfg.UploadMaxMB, cfg.PublicBaseURL)
	return s
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	s.promMiddleware.RegisterAt(app, "/metrics")
	app.Use(s.promMiddleware.Middleware)

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on 429 responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global per-IP rate limit; preflight requests are never limited.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Public blog routes. Specific paths before the parameterized ones.
	blogs := api.Group("/blogs")
	blogs.Get("/", s.OptionalAuth(), s.ListBlogs)
	blogs.Get("/search", s.OptionalAuth(), middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchBlogs)
	blogs.Get("/my-blogs", s.AuthRequired(), s.MyBlogs)
	blogs.Get("/slug/:slug", s.GetBlogBySlug)
	blogs.Get("/:id", s.GetBlog)

	// Protected blog mutations
	blogs.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_blog"), s.CreateBlog)
	blogs.Put("/:id", s.AuthRequired(), s.UpdateBlog)
	blogs.Delete("/:id", s.AuthRequired(), s.DeleteBlog)
	blogs.Post("/upload", s.AuthRequired(), s.UploadBlogImage)
	blogs.Post("/:id/thumbnail", s.AuthRequired(), s.UploadThumbnail)

	// Categories
	api.Get("/categories", s.ListCategories)

	// Users
	users := api.Group("/users", s.AuthRequired())
	users.Get("/", s.ListUsers)
	users.Put("/profile", s.UpdateProfile)
	users.Post("/avatar", s.UploadAvatar)
	users.Get("/:id", s.GetUser)

	// Stored uploads
	app.Static("/api/uploads", s.config.UploadDir)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
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
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired validates the Bearer token and loads the authenticated user
// into locals. Deleted users hold valid tokens for nobody, so the lookup
// result is authoritative.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := s.bearerUserID(c)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Invalid or expired token"))
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Invalid or expired token"))
		}

		c.Locals("userID", user.ID)
		c.Locals("currentUser", user)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// OptionalAuth loads the caller into locals when a valid Bearer token is
// present and passes through anonymously otherwise.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := s.bearerUserID(c)
		if !ok {
			return c.Next()
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return c.Next()
		}

		c.Locals("userID", user.ID)
		c.Locals("currentUser", user)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// bearerUserID parses and validates the Authorization header, returning the
// subject user ID.
func (s *Server) bearerUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(service.TokenIssuer), jwt.WithAudience(service.TokenAudience))
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, false
	}
	return uint(userID), true
}

// currentUser returns the user loaded by AuthRequired.
func (s *Server) currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("currentUser").(*models.User)
	return user
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Inkwell API",
		BodyLimit: (s.config.UploadMaxMB + 1) << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
