package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends understood by STORE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string `env:"ENV" envDefault:"production"` // "development", "production", etc.

	// Server
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	StaticDir  string `env:"STATIC_DIR"` // Built site to serve at /, empty disables

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Store
	StoreBackend    string        `env:"STORE_BACKEND" envDefault:"postgres"`
	StoreEndpoint   string        `env:"STORE_ENDPOINT"`
	StoreCredential string        `env:"STORE_CREDENTIAL"`
	StoreDatabase   string        `env:"STORE_DATABASE"`
	StoreRegion     string        `env:"STORE_REGION" envDefault:"us-east-1"` // dynamodb only
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Visitor counter
	VisitRecordID    string `env:"VISIT_RECORD_ID" envDefault:"portfolio-visits"`
	VisitMaxAttempts int    `env:"VISIT_MAX_ATTEMPTS" envDefault:"5"`

	// CORS
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Contact form rate limiting
	ContactRateLimit  int           `env:"CONTACT_RATE_LIMIT" envDefault:"5"` // 0 disables
	ContactRateWindow time.Duration `env:"CONTACT_RATE_WINDOW" envDefault:"1m"`
	RateLimitRedisURL string        `env:"RATE_LIMIT_REDIS_URL"`

	// Observability
	MetricsEnabled       bool          `env:"METRICS_ENABLED" envDefault:"true"`
	StoreMonitorInterval time.Duration `env:"STORE_MONITOR_INTERVAL" envDefault:"30s"`

	// SMTP
	SMTPEnabled  bool   `env:"SMTP_ENABLED"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPTLS      string `env:"SMTP_TLS" envDefault:"starttls"` // "none", "tls", "starttls"

	// Contact notifications
	ContactNotifyTo string `env:"CONTACT_NOTIFY_TO"`

	// Site Branding
	SiteTitle string `env:"SITE_TITLE" envDefault:"Portfolio"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendPostgres, BackendRedis, BackendDynamoDB:
		errs = append(errs, c.requireStore(true)...)
	case BackendSQLite:
		errs = append(errs, c.requireStore(false)...)
	case BackendMemory:
		if !c.IsDev() {
			errs = append(errs, errors.New("STORE_BACKEND=memory is only allowed in development"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not supported", c.StoreBackend))
	}

	if c.StoreBackend == BackendPostgres && c.StoreEndpoint != "" {
		if u, err := url.Parse(c.StoreEndpoint); err != nil || u.Host == "" {
			errs = append(errs, errors.New("STORE_ENDPOINT must be a postgres URL with a host"))
		}
	}
	if c.StoreBackend == BackendDynamoDB && c.StoreCredential != "" {
		if _, _, ok := c.AWSKeyPair(); !ok {
			errs = append(errs, errors.New("STORE_CREDENTIAL must be ACCESS_KEY_ID:SECRET_ACCESS_KEY"))
		}
	}

	if c.StoreTimeout < time.Second || c.StoreTimeout > 30*time.Second {
		errs = append(errs, fmt.Errorf("STORE_TIMEOUT %s must be between 1s and 30s", c.StoreTimeout))
	}
	if c.VisitMaxAttempts < 1 || c.VisitMaxAttempts > 10 {
		errs = append(errs, fmt.Errorf("VISIT_MAX_ATTEMPTS %d must be between 1 and 10", c.VisitMaxAttempts))
	}
	if strings.TrimSpace(c.VisitRecordID) == "" {
		errs = append(errs, errors.New("VISIT_RECORD_ID must not be empty"))
	}
	if c.ContactRateLimit < 0 {
		errs = append(errs, errors.New("CONTACT_RATE_LIMIT must not be negative"))
	}
	if c.ContactRateLimit > 0 && c.ContactRateWindow <= 0 {
		errs = append(errs, errors.New("CONTACT_RATE_WINDOW must be positive"))
	}
	switch c.SMTPTLS {
	case "none", "tls", "starttls":
	default:
		errs = append(errs, fmt.Errorf("SMTP_TLS %q must be none, tls or starttls", c.SMTPTLS))
	}

	return errors.Join(errs...)
}

func (c *Config) requireStore(credential bool) []error {
	var errs []error
	if c.StoreEndpoint == "" {
		errs = append(errs, errors.New("STORE_ENDPOINT is required"))
	}
	if credential && c.StoreCredential == "" {
		errs = append(errs, errors.New("STORE_CREDENTIAL is required"))
	}
	if c.StoreDatabase == "" {
		errs = append(errs, errors.New("STORE_DATABASE is required"))
	}
	return errs
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is fully configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// PostgresURL combines endpoint, credential and database into one connection URL.
func (c *Config) PostgresURL() string {
	u, err := url.Parse(c.StoreEndpoint)
	if err != nil {
		return c.StoreEndpoint
	}
	user := ""
	if u.User != nil {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.StoreCredential)
	u.Path = "/" + c.StoreDatabase
	return u.String()
}

// SQLitePath returns the database file location.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.StoreEndpoint, c.StoreDatabase+".db")
}

// AWSKeyPair splits the credential into access key ID and secret.
func (c *Config) AWSKeyPair() (id, secret string, ok bool) {
	id, secret, ok = strings.Cut(c.StoreCredential, ":")
	if !ok || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}
