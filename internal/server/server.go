// Package server contains the HTTP handlers and wiring of the blog.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/bootstrap"
	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/seed"
	"blogicum/internal/service"
	"blogicum/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	csrfContextKey = "csrf"
	csrfFormField  = "csrf_token"
	mediaURL       = "/media"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	views          *views.Engine
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *auth.Manager
	rateLimiter    *middleware.RateLimiter
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer connects to the database and redis and builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		SeedIfEmpty: cfg.SeedOnStart,
		Seed:        seed.DefaultOptions(),
	})
	if err != nil {
		return nil, err
	}
	if err := observability.RegisterDatabaseMetrics(db); err != nil {
		return nil, fmt.Errorf("database metrics: %w", err)
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		views:          views.New(mediaURL),
		promMiddleware: middleware.InitMetrics("blogicum"),
		sessions:       auth.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour, redisClient),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env),
		commentService: service.NewCommentService(commentRepo, postRepo),
		userService:    service.NewUserService(userRepo),
	}
	s.postService = service.NewPostService(
		postRepo, categoryRepo, locationRepo, userRepo,
		service.NewImageService(cfg),
	)
	return s, nil
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	uploadMB := s.config.ImageMaxUploadSizeMB
	if uploadMB <= 0 {
		uploadMB = service.DefaultImageMaxUploadSizeMB
	}

	app := fiber.New(fiber.Config{
		AppName:      "Blogicum",
		Views:        s.views,
		ErrorHandler: s.ErrorHandler,
		BodyLimit:    (uploadMB + 1) * 1024 * 1024,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	app.Static(mediaURL, s.config.MediaRoot, fiber.Static{ByteRange: true})

	app.Use(middleware.CurrentUser(auth.CookieName, s.loadSession))

	if s.config.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:" + csrfFormField,
			CookieName:     "csrftoken",
			CookieSameSite: "Lax",
			CookieHTTPOnly: true,
			CookieSecure:   s.config.IsProduction(),
			Expiration:     2 * time.Hour,
			ContextKey:     csrfContextKey,
			ErrorHandler:   s.csrfFailure,
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	login := middleware.LoginRequired(s.config.LoginURL)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/", s.Index)
	app.Get("/category/:slug/", s.CategoryPosts)

	// /profile/edit/ must precede /profile/:username/
	app.Get("/profile/edit/", s.EditProfileForm)
	app.Post("/profile/edit/", s.EditProfile)
	app.Get("/profile/:username/", s.Profile)

	posts := app.Group("/posts")
	posts.Get("/create/", login, s.CreatePostForm)
	posts.Post("/create/", login, s.rateLimiter.Limit("create_post", 10, time.Minute), s.CreatePost)
	posts.Get("/:id/", s.PostDetail)
	posts.Get("/:id/edit/", login, s.EditPostForm)
	posts.Post("/:id/edit/", login, s.EditPost)
	posts.Get("/:id/delete/", login, s.DeletePostConfirm)
	posts.Post("/:id/delete/", login, s.DeletePost)

	posts.Post("/:postId/comment/", login, s.rateLimiter.Limit("create_comment", 30, time.Minute), s.AddComment)
	posts.Get("/:postId/edit_comment/:commentId/", s.EditCommentForm)
	posts.Post("/:postId/edit_comment/:commentId/", s.EditComment)
	posts.Get("/:postId/delete_comment/:commentId/", s.DeleteCommentConfirm)
	posts.Post("/:postId/delete_comment/:commentId/", s.DeleteComment)

	authGroup := app.Group("/auth")
	authGroup.Get("/login/", s.LoginForm)
	authGroup.Post("/login/", s.rateLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	authGroup.Post("/logout/", s.Logout)
	authGroup.Get("/registration/", s.RegistrationForm)
	authGroup.Post("/registration/", s.rateLimiter.Limit("signup", 3, 10*time.Minute), s.Register)

	pages := app.Group("/pages")
	pages.Get("/about/", s.StaticPage("pages/about"))
	pages.Get("/rules/", s.StaticPage("pages/rules"))

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}

// loadSession resolves a session cookie to its user.
func (s *Server) loadSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.sessions.Parse(ctx, token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return s.userService.GetByID(ctx, userID)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// missing client is reported but does not fail the probe.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
