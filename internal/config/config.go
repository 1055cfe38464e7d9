// Package config loads the server configuration. Defaults are overridden by
// an optional YAML file (CONFIG_PATH), then by environment variables, which
// may come from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
	"github.com/jengzang/bikeshare-insights/internal/database"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/pkg/logger"
)

const moduleName = "config"

// Data sources
const (
	SourceFile = "file"
	SourceSQL  = "sql"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Data      DataConfig      `yaml:"data"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig configures bearer auth. An empty secret disables it.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig configures the per-IP limiter. Zero requests disables it.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// DataConfig selects and configures the dataset source
type DataConfig struct {
	Source         string             `yaml:"source"` // file or sql
	Files          dataset.FilePaths  `yaml:"files"`
	Sheet          string             `yaml:"sheet"`
	Tables         dataset.TableNames `yaml:"tables"`
	Database       database.Config    `yaml:"database"`
	Watch          bool               `yaml:"watch"`
	WatchDebounce  time.Duration      `yaml:"watch_debounce"`
	ReloadSchedule string             `yaml:"reload_schedule"` // cron spec, empty disables
}

// DashboardConfig tunes chart rendering
type DashboardConfig struct {
	ShowBackdrop bool   `yaml:"show_backdrop"`
	Language     string `yaml:"language"`
}

// LoggingConfig sets the log level
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
		},
		Data: DataConfig{
			Source:        SourceFile,
			Files:         dataset.DefaultFilePaths,
			Tables:        dataset.DefaultTableNames,
			Database:      database.Config{Driver: database.DriverSQLite},
			WatchDebounce: 500 * time.Millisecond,
		},
		Dashboard: DashboardConfig{
			Language: "en",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Load 加载配置
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Debugf(".env file (%s) not loaded: %v", envFile, err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current values.
func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return apperror.Wrap(apperror.ErrNotFound, moduleName, err, "reading %s", path)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return apperror.Wrap(apperror.ErrMalformed, moduleName, err, "parsing %s", path)
	}
	return nil
}

// applyEnv overrides fields from environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var result *multierror.Error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("PORT", &c.Server.Port)
	duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	integer("RATE_LIMIT_REQUESTS", &c.RateLimit.Requests)
	duration("RATE_LIMIT_WINDOW", &c.RateLimit.Window)
	str("DATA_SOURCE", &c.Data.Source)
	str("HOURLY_PATH", &c.Data.Files.Hourly)
	str("DAILY_PATH", &c.Data.Files.Daily)
	str("SEGMENTS_PATH", &c.Data.Files.Segments)
	str("XLSX_SHEET", &c.Data.Sheet)
	str("SQL_DRIVER", &c.Data.Database.Driver)
	str("SQL_DSN", &c.Data.Database.DSN)
	str("HOURLY_TABLE", &c.Data.Tables.Hourly)
	str("DAILY_TABLE", &c.Data.Tables.Daily)
	str("SEGMENTS_TABLE", &c.Data.Tables.Segments)
	boolean("WATCH_DATA", &c.Data.Watch)
	duration("WATCH_DEBOUNCE", &c.Data.WatchDebounce)
	str("RELOAD_SCHEDULE", &c.Data.ReloadSchedule)
	boolean("SHOW_BACKDROP", &c.Dashboard.ShowBackdrop)
	str("DASHBOARD_LANGUAGE", &c.Dashboard.Language)
	str("LOG_LEVEL", &c.Logging.Level)

	if err := result.ErrorOrNil(); err != nil {
		return apperror.Wrap(apperror.ErrInvalidInput, moduleName, err, "invalid environment override")
	}
	return nil
}

// Validate checks option combinations
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceFile:
	case SourceSQL:
		if c.Data.Database.DSN == "" {
			return apperror.New(apperror.ErrInvalidInput, moduleName, "data source %q needs a DSN", SourceSQL)
		}
		if c.Data.Watch {
			return apperror.New(apperror.ErrInvalidInput, moduleName, "file watching only applies to the %q source", SourceFile)
		}
	default:
		return apperror.New(apperror.ErrInvalidInput, moduleName, "unknown data source %q", c.Data.Source)
	}
	if c.RateLimit.Requests < 0 {
		return apperror.New(apperror.ErrInvalidInput, moduleName, "rate limit must not be negative")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return apperror.New(apperror.ErrInvalidInput, moduleName, "rate limit window must be positive")
	}
	return nil
}
