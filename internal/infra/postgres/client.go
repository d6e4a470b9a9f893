// Package postgres implements every storage port on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/crm-api-go/internal/infra/resilience"
	"github.com/boddenberg/crm-api-go/internal/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("postgres")

var _ port.Store = (*Store)(nil)

// Config holds the connection settings.
type Config struct {
	URL      string
	MaxConns int32
	Retry    resilience.Config
}

// Store wraps a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect opens the pool and waits for the database to answer a ping,
// retrying with backoff while it starts up.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = resilience.RetryWithBackoff(ctx, cfg.Retry, func() error {
		return pool.Ping(ctx)
	}, func(attempt int, err error) {
		logger.Warn("postgres: database not reachable, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("postgres: connected",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// getOne runs a single-row query and scans it with scan. A missing row
// yields (nil, nil).
func getOne[T any](ctx context.Context, s *Store, scan func(pgx.Row) (T, error), query string, args ...any) (*T, error) {
	v, err := scan(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// getMany runs query and scans every row with scan.
func getMany[T any](ctx context.Context, s *Store, scan func(pgx.Row) (T, error), query string, args ...any) ([]T, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
}

// execOnActive runs a write that targets one active row and reports
// ErrNotFound when nothing matched.
func (s *Store) execOnActive(ctx context.Context, notFound error, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func (s *Store) now() time.Time {
	return time.Now().UTC()
}

// deactivate soft-deletes an active row of table. table is always a
// constant supplied by the calling store.
func (s *Store) deactivate(ctx context.Context, table string, notFound error, id, actor int64) error {
	err := s.execOnActive(ctx, notFound,
		`UPDATE `+table+` SET is_active = FALSE, updated_by = $2, updated_at = $3 WHERE id = $1 AND is_active`,
		id, actor, s.now())
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", table, err)
	}
	s.logger.Debug("postgres: row deactivated", zap.String("table", table), zap.Int64("id", id))
	return nil
}
