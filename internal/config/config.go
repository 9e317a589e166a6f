// Package config loads the server configuration from the environment with
// optional YAML overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendDocstore = "docstore"
	BackendPostgres = "postgres"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig    `yaml:"server"`
	Store   StoreConfig     `yaml:"store"`
	Session SessionConfig   `yaml:"session"`
	Relay   RelayConfig     `yaml:"relay"`
	Logging LoggingConfig   `yaml:"logging"`
	RateLim RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR,default=:8080" yaml:"addr"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT,default=10s" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT,default=30s" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=15s" yaml:"shutdown_timeout"`
	AllowedOrigins  string        `env:"SERVER_ALLOWED_ORIGINS,default=*" yaml:"allowed_origins"`
}

// StoreConfig selects and configures the resource backend.
type StoreConfig struct {
	Backend     string        `env:"STORE_BACKEND,default=memory" yaml:"backend"`
	DocstoreURL string        `env:"DOCSTORE_URL" yaml:"docstore_url"`
	DocstoreKey string        `env:"DOCSTORE_SERVICE_KEY" yaml:"docstore_key"`
	Timeout     time.Duration `env:"STORE_TIMEOUT,default=10s" yaml:"timeout"`
	PostgresDSN string        `env:"POSTGRES_DSN" yaml:"postgres_dsn"`
}

// SessionConfig covers session persistence and tokens.
type SessionConfig struct {
	TokenSecret    string        `env:"SESSION_TOKEN_SECRET" yaml:"token_secret"`
	TokenTTL       time.Duration `env:"SESSION_TOKEN_TTL,default=24h" yaml:"token_ttl"`
	SnapshotFile   string        `env:"SESSION_SNAPSHOT_FILE" yaml:"snapshot_file"`
	RedisAddr      string        `env:"SESSION_REDIS_ADDR" yaml:"redis_addr"`
	RedisPassword  string        `env:"SESSION_REDIS_PASSWORD" yaml:"redis_password"`
	ReminderPeriod time.Duration `env:"SESSION_REMINDER_PERIOD,default=5m" yaml:"reminder_period"`
}

// RelayConfig covers outbound third-party services.
type RelayConfig struct {
	ContactEndpoint  string        `env:"RELAY_CONTACT_URL" yaml:"contact_endpoint"`
	ScheduleEndpoint string        `env:"RELAY_SCHEDULE_URL" yaml:"schedule_endpoint"`
	UploadEndpoint   string        `env:"RELAY_UPLOAD_URL" yaml:"upload_endpoint"`
	UploadPreset     string        `env:"RELAY_UPLOAD_PRESET" yaml:"upload_preset"`
	Timeout          time.Duration `env:"RELAY_TIMEOUT,default=15s" yaml:"timeout"`
}

// LoggingConfig covers structured logging.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info" yaml:"level"`
	Format string `env:"LOG_FORMAT,default=json" yaml:"format"`
}

// RateLimitConfig covers request throttling.
type RateLimitConfig struct {
	RequestsPerSecond int `env:"RATE_LIMIT_RPS,default=20" yaml:"requests_per_second"`
	Burst             int `env:"RATE_LIMIT_BURST,default=40" yaml:"burst"`
}

// Load reads .env (when present), decodes the environment, applies optional
// YAML overrides from CONFIG_FILE, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendDocstore:
		if c.Store.DocstoreURL == "" || c.Store.DocstoreKey == "" {
			return fmt.Errorf("docstore backend requires DOCSTORE_URL and DOCSTORE_SERVICE_KEY")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("postgres backend requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Session.TokenSecret == "" {
		return fmt.Errorf("SESSION_TOKEN_SECRET is required")
	}
	if c.RateLim.RequestsPerSecond <= 0 || c.RateLim.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

// Origins splits the comma-separated allowed origins list.
func (c *Config) Origins() []string {
	parts := strings.Split(c.Server.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
