package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "DATABASE_DRIVER", "TOKEN_RATE_LIMIT", "MEDIA_STORAGE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, int64(7), cfg.DBMaxRetries)
	assert.Equal(t, int64(10), cfg.TokenRateLimit)
	assert.Equal(t, "local", cfg.MediaStorage)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POSTGRESQL_PORT", "6543")
	t.Setenv("DATABASE_DRIVER", "SQLite")

	cfg := LoadConfig()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, int64(6543), cfg.PostgreSQLPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Contains(t, cfg.PostgresDSN(), "port=6543")
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("POSTGRESQL_PORT", "not-a-number")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg := LoadConfig()

	assert.Equal(t, int64(5432), cfg.PostgreSQLPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "redis_host: cache.internal\nREDIS_PORT: 6380\nJWT_SECRET: from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.RedisHost)
	assert.Equal(t, int64(6380), cfg.RedisPort)
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
	assert.Equal(t, "from-env", cfg.JWTSecret, "environment wins over file")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unterminated"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 30*time.Second, Seconds(30))
}
