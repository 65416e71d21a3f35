package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Likes backend kinds
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
)

type Config struct {
	App         AppConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Likes       LikesConfig
	Marketplace MarketplaceConfig
	Database    DatabaseConfig
	Session     SessionConfig
	OTel        OTelConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name     string `env:"APP_NAME" envDefault:"flipit-session"`
	Version  string `env:"APP_VERSION" envDefault:"v1.0.0"`
	Port     int    `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string        `env:"JWT_SECRET_KEY"`
	AccessExpiration time.Duration `env:"JWT_ACCESS_EXPIRATION_TIME" envDefault:"1h"`
	SSEExpiration    time.Duration `env:"JWT_SSE_EXPIRATION" envDefault:"5m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// LikesConfig selects and tunes the likes backend
type LikesConfig struct {
	Backend       string        `env:"LIKES_BACKEND" envDefault:"http"`
	ToggleTimeout time.Duration `env:"LIKES_TOGGLE_TIMEOUT" envDefault:"10s"`
	StartTimeout  time.Duration `env:"LIKES_START_TIMEOUT" envDefault:"15s"`
}

// MarketplaceConfig points at the marketplace REST backend
type MarketplaceConfig struct {
	BaseURL string        `env:"MARKETPLACE_BASE_URL"`
	Timeout time.Duration `env:"MARKETPLACE_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"flipit"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
}

// SessionConfig controls in-memory session lifetime
type SessionConfig struct {
	IdleTimeout       time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval     time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`
	ReconcileInterval time.Duration `env:"LIKES_RECONCILE_INTERVAL" envDefault:"0s"`
}

// OTelConfig enables trace export
type OTelConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	return Parse()
}

// Parse builds a Config from the process environment only
func Parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	config.Likes.Backend = strings.ToLower(strings.TrimSpace(config.Likes.Backend))

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}

	switch c.Likes.Backend {
	case BackendHTTP:
		if c.Marketplace.BaseURL == "" {
			return fmt.Errorf("MARKETPLACE_BASE_URL is required when LIKES_BACKEND=%s", BackendHTTP)
		}
	case BackendPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when LIKES_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("unsupported LIKES_BACKEND %q", c.Likes.Backend)
	}

	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
