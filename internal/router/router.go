package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/socialnet/backend/internal/events"
	"github.com/anonto42/socialnet/backend/internal/handlers"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/realtime"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/anonto42/socialnet/backend/internal/storage"
	"github.com/anonto42/socialnet/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// rateLimiterTTL is how long an idle client address is remembered by the limiter.
const rateLimiterTTL = 10 * time.Minute

// Dependencies are the connections and shared components built at startup.
type Dependencies struct {
	Config    *config.Config
	Postgres  *gorm.DB
	Mongo     *mongo.Database
	Media     storage.MediaStore
	Publisher events.Publisher
	Hub       *realtime.Hub
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// FirebaseAuth is nil when firebase is not configured. Pass an untyped nil, not a nil *auth.Client.
	FirebaseAuth middleware.TokenVerifier
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, deps *Dependencies) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: deps.Config.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.HTTPMetrics(deps.Metrics))
	e.Use(middleware.RateLimit(middleware.NewIPRateLimiter(
		deps.Config.RateLimitRequests,
		deps.Config.RateLimitWindow,
		deps.Config.RateLimitBurst,
		rateLimiterTTL,
	), "/health"))
	deps.Logger.Info("Global middleware configured.")
}

// SetupRoutes migrates the schemas, builds repositories and services, and registers every route.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger

	if cfg.AutoMigrate {
		if err := deps.Postgres.AutoMigrate(&models.User{}, &models.Friendship{}, &models.Notification{}); err != nil {
			return fmt.Errorf("auto migrate models: %w", err)
		}
		log.Info("PostgreSQL auto-migrations completed.")
	}

	postRepo := repositories.NewMongoPostRepository(deps.Mongo)
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure post indexes: %w", err)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	if local, ok := deps.Media.(*storage.LocalStorage); ok {
		e.Static(local.URLPrefix(), local.Root())
		log.Info("Serving uploaded media.", "prefix", local.URLPrefix(), "dir", local.Root())
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo, postRepo, deps.Publisher, deps.Hub, deps.Metrics)
	friendshipService := services.NewFriendshipService(friendshipRepo, userRepo, notificationService, deps.Metrics, cfg.FriendRerequestCooldown)
	postService := services.NewPostService(postRepo, userRepo, deps.Media, notificationService, deps.Metrics)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, cfg.JWTSecret, cfg.JWTTTL).RegisterAuthRoutes(authGroup)
	log.Info("Auth routes configured.")

	authMiddleware, err := selectAuthMiddleware(cfg, deps.FirebaseAuth, userRepo)
	if err != nil {
		return err
	}
	log.Info("Authentication middleware selected.", "provider", cfg.AuthProvider)

	// --- Protected routes ---
	api := e.Group("/api/v1", authMiddleware)

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	log.Info("User profile routes configured.")

	handlers.NewFriendshipHandler(friendshipService).RegisterFriendshipRoutes(api)
	log.Info("Friendship routes configured.")

	handlers.NewFeedHandler(postService).RegisterFeedRoutes(api)
	handlers.NewPostHandler(postService).RegisterPostRoutes(api)
	log.Info("Post routes configured.")

	handlers.NewLikeHandler(postService).RegisterLikeRoutes(api)
	log.Info("Like routes configured.")

	handlers.NewCommentHandler(postService).RegisterCommentRoutes(api)
	log.Info("Comment routes configured.")

	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api)
	log.Info("Notification routes configured.")

	// registered on e directly; an authenticated group at the root would also catch every unmatched path
	wsHandler := handlers.NewWSHandler(deps.Hub, cfg.CORSAllowOrigins)
	e.GET("/ws", wsHandler.Serve, middleware.QueryToken(), authMiddleware)
	log.Info("Websocket route configured.")

	log.Info("All routes configured.", "routes", len(e.Routes()))
	return nil
}

func selectAuthMiddleware(cfg *config.Config, verifier middleware.TokenVerifier, users repositories.UserRepository) (echo.MiddlewareFunc, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderJWT:
		return middleware.JWTAuthMiddleware(cfg.JWTSecret), nil
	case config.AuthProviderFirebase:
		if verifier == nil {
			return nil, fmt.Errorf("AUTH_PROVIDER=firebase requires FIREBASE_CREDENTIALS_PATH")
		}
		return middleware.FirebaseAuthMiddleware(verifier, users), nil
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
}
