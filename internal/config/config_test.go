package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_PATH", "")
	for _, key := range []string{"PORT", "JWT_SECRET", "DATA_SOURCE", "SQL_DSN", "LOG_LEVEL", "SHOW_BACKDROP", "WATCH_DATA", "RATE_LIMIT_REQUESTS", "HOURLY_PATH"} {
		t.Setenv(key, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, dataset.DefaultFilePaths, cfg.Data.Files)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.False(t, cfg.Dashboard.ShowBackdrop)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)

	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, `
server:
  port: ":9000"
rate_limit:
  window: 30s
data:
  files:
    hourly: /srv/hour.xlsx
  sheet: Hourly
dashboard:
  show_backdrop: true
logging:
  level: DEBUG
`)
	t.Setenv("CONFIG_PATH", yamlPath)
	t.Setenv("PORT", ":9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 120, cfg.RateLimit.Requests)
	assert.Equal(t, "/srv/hour.xlsx", cfg.Data.Files.Hourly)
	assert.Equal(t, dataset.DefaultFilePaths.Daily, cfg.Data.Files.Daily)
	assert.Equal(t, "Hourly", cfg.Data.Sheet)
	assert.True(t, cfg.Dashboard.ShowBackdrop)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)

	envPath := filepath.Join(dir, "test.env")
	writeFile(t, envPath, "HOURLY_TABLE=hourly_from_dotenv\n")
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() { os.Unsetenv("HOURLY_TABLE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hourly_from_dotenv", cfg.Data.Tables.Hourly)
}

func TestLoadRejects(t *testing.T) {
	isolate(t)
	t.Setenv("SHOW_BACKDROP", "sometimes")
	_, err := Load()
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	isolate(t)
	t.Setenv("DATA_SOURCE", "sql")
	_, err = Load()
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	isolate(t)
	t.Setenv("DATA_SOURCE", "parquet")
	_, err = Load()
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	isolate(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	_, err = Load()
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Data.Source = SourceSQL
	cfg.Data.Database.DSN = "file:rentals.db"
	assert.NoError(t, cfg.Validate())

	cfg.Data.Watch = true
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RateLimit.Window = 0
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.Requests = 0
	assert.NoError(t, cfg.Validate())
}
