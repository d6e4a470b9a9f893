package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port            int           `env:"PORT" envDefault:"3001"`
	Environment     string        `env:"APP_ENV" envDefault:"production"`
	Version         string        `env:"APP_VERSION" envDefault:"1.0.0"`
	APIPrefix       string        `env:"API_PREFIX" envDefault:"/api"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Logging
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`

	// Storage
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Resilience
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"5"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"200ms"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" envDefault:"100"`

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// JWT / Auth
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"crm-default-dev-secret-change-me"`
	JWTExpiresIn    time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"crm-api"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"12"`
	AdminRoles      []string      `env:"ADMIN_ROLES" envDefault:"Admin,Manager" envSeparator:","`
	SystemUserEmail string        `env:"SYSTEM_USER_EMAIL" envDefault:"admin@system.com"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// IsDevelopment reports whether error responses may carry debug detail.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
