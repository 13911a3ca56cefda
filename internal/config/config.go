// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Catalogue CatalogueConfig
	Database  DatabaseConfig
	S3        S3Config
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// CatalogueConfig holds catalogue source settings.
type CatalogueConfig struct {
	// Source selects the catalogue driver: dir, postgres, or s3 (default: dir)
	Source string `env:"CATALOGUE_SOURCE" envDefault:"dir"`

	// Dir is the directory of <NAME>.csv files for the dir driver
	Dir string `env:"CATALOGUE_DIR" envDefault:"data_sources/crt_catalogues"`

	// AppendEnabled controls whether the append endpoint is exposed (default: true)
	AppendEnabled bool `env:"CATALOGUE_APPEND_ENABLED" envDefault:"true"`

	// ViewsEnabled controls whether JSON views are derived and served (default: true)
	// Views are only available with the dir driver.
	ViewsEnabled bool `env:"CATALOGUE_VIEWS_ENABLED" envDefault:"true"`
}

// DatabaseConfig holds Postgres mirror settings (postgres driver only).
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required for the postgres driver)
	URL string `env:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" envDefault:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`

	// MaxConnIdleTime is the maximum idle time before close (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
}

// S3Config holds object-store mirror settings (s3 driver only).
type S3Config struct {
	// Bucket holding the catalogue objects (required for the s3 driver)
	Bucket string `env:"CATALOGUE_S3_BUCKET"`

	// Region of the bucket (default: us-east-1)
	Region string `env:"CATALOGUE_S3_REGION" envDefault:"us-east-1"`

	// Prefix prepended to object keys (optional)
	Prefix string `env:"CATALOGUE_S3_PREFIX"`

	// Endpoint enables S3-compatible stores like MinIO (optional)
	Endpoint string `env:"CATALOGUE_S3_ENDPOINT"`

	// PathStyle forces path-style addressing (default: false)
	PathStyle bool `env:"CATALOGUE_S3_PATH_STYLE" envDefault:"false"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key validation (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" envDefault:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Catalogue: {Source: %q, Dir: %q, AppendEnabled: %v}, ",
		c.Catalogue.Source, c.Catalogue.Dir, c.Catalogue.AppendEnabled))
	b.WriteString("Database: {URL: [MASKED]}, ")
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
