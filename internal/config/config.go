// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :5000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. When empty the server runs on in-memory stores.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret signs session tokens (HS256). Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production"). Production selects
	// Secure, SameSite=None session cookies and JSON logs.
	Env string `mapstructure:"APP_ENV"`
	// CORSAllowedOrigins is a comma-separated list of origins allowed to send credentialed requests.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// RateLimitRequests is the number of requests each IP may make per RateLimitWindow.
	RateLimitRequests int `mapstructure:"RATE_LIMIT_REQUESTS"`
	// RateLimitWindow is the rate limit window (e.g. "15m").
	RateLimitWindow string `mapstructure:"RATE_LIMIT_WINDOW"`
	// TrustProxy keys the rate limit on X-Forwarded-For / X-Real-IP. Set it only behind a reverse proxy.
	TrustProxy bool `mapstructure:"TRUST_PROXY"`

	// RedisURL, when set, backs the draw lock with Redis so draws are serialized across instances.
	RedisURL string `mapstructure:"REDIS_URL"`
	// DrawLockTTL bounds how long a Redis draw lock survives a crashed holder (e.g. "30s").
	DrawLockTTL string `mapstructure:"DRAW_LOCK_TTL"`

	// Telemetry (optional). When the endpoint is empty the providers are no-ops.
	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure    bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// BootstrapUsername and BootstrapPassword seed the superadmin at startup when the server
	// runs on in-memory stores. With Postgres use cmd/bootstrap instead.
	BootstrapUsername string `mapstructure:"BOOTSTRAP_USERNAME"`
	BootstrapPassword string `mapstructure:"BOOTSTRAP_PASSWORD"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := newViper()

	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("DRAW_LOCK_TTL", "30s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "event-raffle")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BOOTSTRAP_USERNAME", "")
	v.SetDefault("BOOTSTRAP_PASSWORD", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.RateLimitRequests < 0 {
		return nil, errors.New("config: RATE_LIMIT_REQUESTS must not be negative")
	}

	return &cfg, nil
}

// DatabaseURL returns DATABASE_URL from .env or the environment without validating the rest of the config.
// Used by tools (cmd/migrate, cmd/bootstrap) that do not need a signing secret.
func DatabaseURL() string {
	return strings.TrimSpace(newViper().GetString("DATABASE_URL"))
}

// BcryptCostOrDefault returns BCRYPT_COST from .env or the environment, or 12 when unset or out of range.
func BcryptCostOrDefault() int {
	c := newViper().GetInt("BCRYPT_COST")
	if c < 4 || c > 31 {
		return 12
	}
	return c
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()
	return v
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// RateWindow parses RateLimitWindow as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) RateWindow() time.Duration {
	d, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// LockTTL parses DrawLockTTL as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) LockTTL() time.Duration {
	d, err := time.ParseDuration(c.DrawLockTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// AllowedOrigins returns the CORS origins from the comma-separated config.
func (c *Config) AllowedOrigins() []string {
	if c == nil || c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
