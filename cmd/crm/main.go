package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/crm-api-go/internal/config"
	"github.com/boddenberg/crm-api-go/internal/handler"
	"github.com/boddenberg/crm-api-go/internal/infra/memory"
	"github.com/boddenberg/crm-api-go/internal/infra/observability"
	"github.com/boddenberg/crm-api-go/internal/infra/postgres"
	"github.com/boddenberg/crm-api-go/internal/infra/resilience"
	"github.com/boddenberg/crm-api-go/internal/port"
	"github.com/boddenberg/crm-api-go/internal/service"

	"go.uber.org/zap"
)

const serviceName = "crm-api"

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := newLogger(cfg)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_prefix", cfg.APIPrefix),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("jwt_expires_in", cfg.JWTExpiresIn),
		zap.Strings("admin_roles", cfg.AdminRoles),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, serviceName, cfg.Version)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage ---
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	// --- Services ---
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTIssuer)
	validator := service.NewValidator(store, metrics)
	breaker := resilience.NewCircuitBreaker("store", logger)

	services := handler.Services{
		Auth:           service.NewAuthService(store, store, hasher, tokens, cfg.SystemUserEmail, logger),
		Users:          service.NewUserService(store, validator, hasher, logger),
		Leads:          service.NewLeadService(store, validator, metrics, logger),
		WorkItems:      service.NewWorkItemService(store, validator, logger),
		Tasks:          service.NewTaskService(store, validator, logger),
		Communications: service.NewCommunicationService(store, validator, logger),
		Lookups:        service.NewLookupService(store, store),
		Health:         service.NewHealthService(store, breaker, cfg.Environment, cfg.Version, logger),
	}

	// --- Router ---
	router := handler.NewRouter(services, handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.AllowedOrigins,
		AdminRoles:     cfg.AdminRoles,
		MaxConcurrency: cfg.MaxConcurrency,
		DevMode:        cfg.IsDevelopment(),
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	if cfg.LogFile == "" {
		return observability.NewLogger(cfg.LogLevel)
	}
	return observability.NewLoggerWithFile(cfg.LogLevel, observability.FileSink{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

// openStore selects the storage driver and returns it with its closer.
func openStore(cfg *config.Config, logger *zap.Logger) (port.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		Retry: resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
		},
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return pg, pg.Close, nil
}
