// Package config provides configuration management for the item service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultProbePort       = 9090
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultEnvironment     = EnvironmentProduction
	DefaultEventsEnabled   = true
	DefaultRateLimitBurst  = 10
	DefaultMaxBodyBytes    = 1 << 20 // 1 MB
)

// Environments.
const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvProbePort       = "APP_PROBE_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvEnvironment     = "APP_ENV"
	EnvEventsEnabled   = "APP_EVENTS_ENABLED"
	EnvRateLimitPerMin = "APP_RATE_LIMIT_PER_MIN"
	EnvRateLimitBurst  = "APP_RATE_LIMIT_BURST"
	EnvMaxBodyBytes    = "APP_MAX_BODY_BYTES"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	ProbePort       int // Probe server port (0 = disabled).
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Environment is one of production, development or test.
	Environment string

	// EventsEnabled exposes the /ws item event feed.
	EventsEnabled bool

	// RateLimitPerMin is the per-client request budget (0 = unlimited).
	RateLimitPerMin int
	RateLimitBurst  int

	// MaxBodyBytes caps request bodies (0 = unlimited).
	MaxBodyBytes int64
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidProbePort       = errors.New("probe port must be between 0 and 65535")
	ErrProbePortConflict      = errors.New("probe port must differ from server port when probe port is not 0")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidEnvironment     = errors.New("environment must be one of: production, development, test")
	ErrInvalidRateLimit       = errors.New("rate limit must not be negative")
	ErrInvalidRateLimitBurst  = errors.New("rate limit burst must be positive when rate limiting is enabled")
	ErrInvalidMaxBodyBytes    = errors.New("max body bytes must not be negative")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		ProbePort:       DefaultProbePort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		Environment:     DefaultEnvironment,
		EventsEnabled:   DefaultEventsEnabled,
		RateLimitBurst:  DefaultRateLimitBurst,
		MaxBodyBytes:    DefaultMaxBodyBytes,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	if err := c.loadFeatureEnv(); err != nil {
		return err
	}

	return nil
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if err := parseIntEnv(EnvServerPort, &c.ServerPort); err != nil {
		return err
	}

	if err := parseIntEnv(EnvProbePort, &c.ProbePort); err != nil {
		return err
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvEnvironment); val != "" {
		c.Environment = val
	}

	return nil
}

// loadFeatureEnv loads metrics, events, rate limiting and body limit settings.
func (c *Config) loadFeatureEnv() error {
	if err := parseBoolEnv(EnvMetricsEnabled, &c.MetricsEnabled); err != nil {
		return err
	}

	if err := parseBoolEnv(EnvEventsEnabled, &c.EventsEnabled); err != nil {
		return err
	}

	if err := parseIntEnv(EnvRateLimitPerMin, &c.RateLimitPerMin); err != nil {
		return err
	}

	if err := parseIntEnv(EnvRateLimitBurst, &c.RateLimitBurst); err != nil {
		return err
	}

	if val := os.Getenv(EnvMaxBodyBytes); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMaxBodyBytes, err)
		}
		c.MaxBodyBytes = n
	}

	return nil
}

func parseIntEnv(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = n
	return nil
}

func parseBoolEnv(name string, dst *bool) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = b
	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLimits(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	if c.ProbePort < 0 || c.ProbePort > 65535 {
		return ErrInvalidProbePort
	}

	if c.ProbePort != 0 && c.ProbePort == c.ServerPort {
		return ErrProbePortConflict
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	validEnvironments := map[string]bool{
		EnvironmentProduction:  true,
		EnvironmentDevelopment: true,
		EnvironmentTest:        true,
	}
	if !validEnvironments[c.Environment] {
		return ErrInvalidEnvironment
	}

	return nil
}

// validateLimits validates rate limiting and body size settings.
func (c *Config) validateLimits() error {
	if c.RateLimitPerMin < 0 {
		return ErrInvalidRateLimit
	}

	if c.RateLimitPerMin > 0 && c.RateLimitBurst < 1 {
		return ErrInvalidRateLimitBurst
	}

	if c.MaxBodyBytes < 0 {
		return ErrInvalidMaxBodyBytes
	}

	return nil
}

// IsTest reports whether the service runs in test mode.
func (c *Config) IsTest() bool {
	return c.Environment == EnvironmentTest
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// ProbeAddress returns the probe server address in host:port format.
func (c *Config) ProbeAddress() string {
	return fmt.Sprintf(":%d", c.ProbePort)
}
