package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/socialnet/backend/internal/events"
	"github.com/anonto42/socialnet/backend/internal/grpcserver"
	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/realtime"
	"github.com/anonto42/socialnet/backend/internal/router"
	"github.com/anonto42/socialnet/backend/internal/storage"
	"github.com/anonto42/socialnet/backend/pkg/config"
	"github.com/anonto42/socialnet/backend/pkg/firebase"
	"github.com/anonto42/socialnet/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	// Firebase is optional unless it is the auth provider
	var firebaseAuth middleware.TokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		firebaseAuth = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		logger.Info("Firebase not configured, firebase-login disabled.")
	default:
		return err
	}

	media, err := newMediaStore(ctx, cfg)
	if err != nil {
		return err
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	deps := &router.Dependencies{
		Config:       cfg,
		Postgres:     db.Postgres,
		Mongo:        db.MongoDB,
		Media:        media,
		Publisher:    publisher,
		Hub:          realtime.NewHub(logger),
		Metrics:      appMetrics,
		Logger:       logger,
		FirebaseAuth: firebaseAuth,
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, deps)
	if err := router.SetupRoutes(ctx, e, deps); err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server listening.", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	health := grpcserver.NewHealthServer(map[string]grpcserver.Probe{
		"postgres": db.PingPostgres,
		"mongo":    db.PingMongo,
	}, logger)
	if _, err := grpcserver.Listen(ctx, ":"+cfg.GRPCPort, health, cfg.HealthCheckInterval); err != nil {
		return err
	}
	logger.Info("gRPC health server listening.", "port", cfg.GRPCPort)

	go func() {
		logger.Info("HTTP server listening.", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown", "error", err)
	}
	return nil
}

func newMediaStore(ctx context.Context, cfg *config.Config) (storage.MediaStore, error) {
	if cfg.MediaBackend == config.MediaBackendS3 {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	}
	return storage.NewLocalStorage(cfg.UploadDir, "/uploads")
}

// newPublisher falls back to a logging no-op when RabbitMQ is not configured or unreachable.
// Notifications are best effort, so the API still starts.
func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, notification events will not be published.")
		return events.NewNoopPublisher(logger)
	}
	publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, notification events will not be published.", "error", err)
		return events.NewNoopPublisher(logger)
	}
	return publisher
}
