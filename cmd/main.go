package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/freshtrack/tag-alerting/internal/config"
	"github.com/freshtrack/tag-alerting/internal/handler"
	"github.com/freshtrack/tag-alerting/internal/health"
	"github.com/freshtrack/tag-alerting/internal/infra/alertrecorder"
	"github.com/freshtrack/tag-alerting/internal/infra/repository"
	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/observability"
	"github.com/freshtrack/tag-alerting/internal/observability/logging"
	"github.com/freshtrack/tag-alerting/internal/observability/metrics"
	"github.com/freshtrack/tag-alerting/internal/observability/middleware"
	"github.com/freshtrack/tag-alerting/internal/service/alert"
	"github.com/freshtrack/tag-alerting/internal/service/policy"
	"github.com/freshtrack/tag-alerting/internal/service/status"
	"github.com/freshtrack/tag-alerting/internal/service/tag"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	alertMetrics, err := metrics.NewAlertMetrics()
	if err != nil {
		slog.Error("failed to initialize alert metrics", slog.String("error", err.Error()))
		return 1
	}

	recorderCfg := alertrecorder.LoadConfig()
	recorder, err := alertrecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize alert transition recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close alert transition recorder", slog.String("error", err.Error()))
		}
	}()

	redisOpts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.TLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	storeClient := tagstore.NewClient(cfg.TagStoreURL)
	alertRepo := repository.NewAlertRepository(redisClient)

	resolver := policy.NewResolver()
	classifier := status.NewClassifier()

	tagService := tag.NewService(storeClient, resolver, classifier)
	alertManager := alert.NewManager(
		ctx,
		storeClient,
		alertRepo,
		classifier,
		recorder,
		alertMetrics,
		alert.Options{TickInterval: cfg.Alert.TickInterval},
	)
	defer alertManager.StopAll()

	tagHandler := handler.NewTagHandler(tagService)
	alertHandler := handler.NewAlertHandler(alertManager)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("tag-alerting"),
		TracerName:  "github.com/freshtrack/tag-alerting/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, storeClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// API routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/tags", tagHandler.HandleCreate)
		v1.POST("/tags/:id/discard", tagHandler.HandleDiscard)
		v1.POST("/tags/:id/printed", tagHandler.HandlePrinted)
		v1.GET("/tags", tagHandler.HandleList)

		v1.GET("/alerts", alertHandler.HandlePoll)
		v1.POST("/alerts/:id/ack", alertHandler.HandleAcknowledge)
		v1.DELETE("/alerts/watch", alertHandler.HandleUnwatch)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("tag_store_url", cfg.TagStoreURL),
			slog.Duration("alert_tick_interval", cfg.Alert.TickInterval),
		)
		serverErr <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		alertManager.StopAll()
		cancel()

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "tag-alerting"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceName:  serviceName,
		Version:      Version,
		Environment:  env,
		LogLevel:     slog.LevelInfo,
		SamplingRate: 1.0,
	})
}
