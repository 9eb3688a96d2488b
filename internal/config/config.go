// Package config provides centralized configuration management for beadinspect.
// Settings come from struct-tag defaults, an optional YAML file, and
// environment variables, in that order, and are validated on startup to fail
// fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Inspector InspectorConfig `yaml:"inspector"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InspectorConfig holds validation run settings.
type InspectorConfig struct {
	// DataDir is the directory searched for "<format>.csv" files
	DataDir string `env:"BEAD_DATA_DIR" yaml:"data_dir"`

	// Formats limits a run to these formats (default: all registered formats)
	Formats []string `env:"BEAD_FORMATS" yaml:"formats"`

	// ResultsDir receives logs/ and reports/ (default: the data directory)
	ResultsDir string `env:"BEAD_RESULTS_DIR" yaml:"results_dir"`

	// SingleErrorLogLimit caps the failing rows kept per issue (default: 20)
	SingleErrorLogLimit int `env:"BEAD_SINGLE_ERROR_LOG_LIMIT" default:"20" yaml:"single_error_log_limit"`

	// WriteReport controls whether the HTML report is rendered (default: true)
	WriteReport bool `env:"BEAD_WRITE_REPORT" default:"true" yaml:"write_report"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1" yaml:"host"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080" yaml:"port"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m" yaml:"write_timeout"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s" yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s" yaml:"shutdown_timeout"`

	// RequestTimeout is the middleware timeout for requests; validation runs
	// triggered over HTTP must finish within it (default: 4m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"4m" yaml:"request_timeout"`

	// RunQueueWait is how long a run request waits for an active run to finish
	// before failing (default: 0, fail at once)
	RunQueueWait time.Duration `env:"SERVER_RUN_QUEUE_WAIT" yaml:"run_queue_wait"`

	// TrustedProxies lists CIDRs whose X-Real-IP and X-Forwarded-For headers are honored
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES" yaml:"trusted_proxies"`

	// APIKeys guards run-starting endpoints when non-empty (X-API-Key header)
	APIKeys []string `env:"SERVER_API_KEYS" yaml:"api_keys"`
}

// DatabaseConfig holds the optional Postgres run store settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables the run store.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" yaml:"url"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10" yaml:"max_conns"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1" yaml:"min_conns"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h" yaml:"max_conn_lifetime"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m" yaml:"max_conn_idle_time"`
}

// Enabled reports whether a database URL is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info" yaml:"level"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text" yaml:"format"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
