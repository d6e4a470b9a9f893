package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/crm-api-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "")
	require.NoError(t, os.Unsetenv("APP_ENV"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"Admin", "Manager"}, cfg.AdminRoles)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.IsDevelopment(), "debug detail is opt-in")
}

func TestLoad_DevelopmentOptIn(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRES_IN", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("APP_ENV", "production")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CRM_DOTENV_A=from-file\nCRM_DOTENV_B=\"quoted\"\n"), 0o600))

	t.Setenv("CRM_DOTENV_A", "from-env")
	t.Cleanup(func() { os.Unsetenv("CRM_DOTENV_B") })

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("CRM_DOTENV_A"))
	assert.Equal(t, "quoted", os.Getenv("CRM_DOTENV_B"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
