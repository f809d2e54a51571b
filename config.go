package goUmroh

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goUmroh/internal/logger"
)

// DefaultAuthURL is the hosted identity provider.
const DefaultAuthURL = "https://auth.emergentagent.com"

// Config defines how a Client reaches the backend, where it keeps the
// credential, and which ambient features are on.
//
// Config values are copied by Builder.WithConfig; later mutation of the
// caller's value has no effect on a built Client.
type Config struct {
	API     APIConfig
	Auth    AuthConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig configures the request pipeline.
type APIConfig struct {
	// BackendURL is the backend origin; requests go to BackendURL + "/api".
	BackendURL string
	// Timeout bounds every API call.
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
AUTH CONFIG
====================================
*/

// AuthConfig configures the redirect login.
type AuthConfig struct {
	AuthURL string
	// CallbackURL is where the provider sends the browser back, e.g.
	// "umroh://auth" or a loopback listener address.
	CallbackURL string
	// InstallID makes the callback URL unique to this install. When empty,
	// Build loads or creates one next to a file store, or generates an
	// ephemeral one otherwise.
	InstallID string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageKind selects the credential store backend.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageFile   StorageKind = "file"
	StorageRedis  StorageKind = "redis"
)

// StorageConfig configures where the session credential is persisted.
// It is ignored when Builder.WithTokenStore supplies a store.
type StorageConfig struct {
	Kind StorageKind
	// Path is the directory of the file store.
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

/*
====================================
AUDIT / METRICS / LOGGING
====================================
*/

// AuditConfig configures asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// LoggingConfig is consumed by the binaries when they build a logger.
type LoggingConfig struct {
	Level  string
	Format string
}

/*
====================================
DEFAULTS
====================================
*/

// DefaultConfig returns a Config with every optional field filled in. The
// backend URL is left empty and must be provided.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   10 * time.Second,
			UserAgent: "goUmroh/1.0",
		},
		Auth: AuthConfig{
			AuthURL:     DefaultAuthURL,
			CallbackURL: "umroh://auth",
		},
		Storage: StorageConfig{
			Kind:        StorageMemory,
			RedisPrefix: "umroh",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logger.FormatConsole,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	// API
	if err := validateHTTPURL("API.BackendURL", c.API.BackendURL); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return errors.New("API.Timeout must be > 0")
	}

	// Auth
	if err := validateHTTPURL("Auth.AuthURL", c.Auth.AuthURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.CallbackURL) == "" {
		return errors.New("Auth.CallbackURL must be set")
	}
	cb, err := url.Parse(c.Auth.CallbackURL)
	if err != nil || cb.Scheme == "" {
		return fmt.Errorf("Auth.CallbackURL %q must be an absolute URL", c.Auth.CallbackURL)
	}

	// Storage
	switch c.Storage.Kind {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("Storage.Path must be set for file storage")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Storage.RedisPrefix) == "" {
			return errors.New("Storage.RedisPrefix must be set for redis storage")
		}
		if c.Storage.RedisDB < 0 {
			return errors.New("Storage.RedisDB must be >= 0")
		}
	default:
		return fmt.Errorf("Storage.Kind %q is not one of memory, file, redis", c.Storage.Kind)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}

	// Logging
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("Logging.Format %q is not one of console, json", c.Logging.Format)
	}

	return nil
}

func validateHTTPURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s must be set", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %v", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
