package service

import (
	"context"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var healthTracer = otel.Tracer("service/health")

const pingTimeout = 2 * time.Second

// HealthService reports process and storage health. Storage pings go through
// a circuit breaker so a dead database is not hammered by probes.
type HealthService struct {
	checker     port.HealthChecker
	breaker     *gobreaker.CircuitBreaker
	environment string
	version     string
	started     time.Time
	logger      *zap.Logger
}

// NewHealthService creates a new health service.
func NewHealthService(checker port.HealthChecker, breaker *gobreaker.CircuitBreaker, environment, version string, logger *zap.Logger) *HealthService {
	return &HealthService{
		checker:     checker,
		breaker:     breaker,
		environment: environment,
		version:     version,
		started:     time.Now(),
		logger:      logger,
	}
}

// Check pings storage and reports whether the service is healthy.
func (s *HealthService) Check(ctx context.Context) (*domain.HealthStatus, bool) {
	ctx, span := healthTracer.Start(ctx, "HealthService.Check")
	defer span.End()

	start := time.Now()
	err := s.ping(ctx)
	elapsed := time.Since(start)

	status := &domain.HealthStatus{
		Status:      "healthy",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      time.Since(s.started).Seconds(),
		Environment: s.environment,
		Version:     s.version,
		Database: domain.DatabaseHealth{
			Status:         "connected",
			ResponseTimeMs: elapsed.Milliseconds(),
		},
	}
	if err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		status.Status = "unhealthy"
		status.Database.Status = "disconnected"
		status.Error = err.Error()
		return status, false
	}
	return status, true
}

// Ready reports whether storage is reachable.
func (s *HealthService) Ready(ctx context.Context) (*domain.ProbeStatus, bool) {
	ctx, span := healthTracer.Start(ctx, "HealthService.Ready")
	defer span.End()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", zap.Error(err))
		return &domain.ProbeStatus{Status: "not ready", Timestamp: now, Error: err.Error()}, false
	}
	return &domain.ProbeStatus{Status: "ready", Timestamp: now}, true
}

// Live never touches storage.
func (s *HealthService) Live() *domain.ProbeStatus {
	return &domain.ProbeStatus{Status: "alive", Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func (s *HealthService) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.checker.Ping(ctx)
	})
	return err
}
