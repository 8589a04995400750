package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the gallery grabber
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Outbound fetch settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Retry policy for outbound fetches
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Archive building settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Result store settings
	Store StoreConfig `yaml:"store" json:"store"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// FetchConfig holds outbound HTTP fetch configuration
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// RetryConfig holds the retry policy applied to every fetch
type RetryConfig struct {
	MaxAttempts          int           `yaml:"max_attempts" json:"max_attempts"`
	BackoffBase          time.Duration `yaml:"backoff_base" json:"backoff_base"`
	RetryableStatusCodes []int         `yaml:"retryable_status_codes" json:"retryable_status_codes"`
	RetryableMethods     []string      `yaml:"retryable_methods" json:"retryable_methods"`
}

// ArchiveConfig holds archive build configuration
type ArchiveConfig struct {
	ConcurrentFetches int `yaml:"concurrent_fetches" json:"concurrent_fetches"`
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// StoreConfig holds result store configuration
type StoreConfig struct {
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			MaxBodyBytes: 50 * 1024 * 1024,
		},
		Retry: RetryConfig{
			MaxAttempts:          3,
			BackoffBase:          800 * time.Millisecond,
			RetryableStatusCodes: []int{429, 500, 502, 503, 504},
			RetryableMethods:     []string{"GET", "HEAD"},
		},
		Archive: ArchiveConfig{
			ConcurrentFetches: 3,
			RequestsPerMinute: 120,
		},
		Store: StoreConfig{
			TTL:           15 * time.Minute,
			SweepInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if addr := os.Getenv("GALLERYGRAB_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if userAgent := os.Getenv("GALLERYGRAB_USER_AGENT"); userAgent != "" {
		c.Fetch.UserAgent = userAgent
	}
	if timeout := os.Getenv("GALLERYGRAB_FETCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid GALLERYGRAB_FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if attempts := os.Getenv("GALLERYGRAB_MAX_ATTEMPTS"); attempts != "" {
		n, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("invalid GALLERYGRAB_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if base := os.Getenv("GALLERYGRAB_BACKOFF_BASE"); base != "" {
		d, err := time.ParseDuration(base)
		if err != nil {
			return fmt.Errorf("invalid GALLERYGRAB_BACKOFF_BASE: %w", err)
		}
		c.Retry.BackoffBase = d
	}
	if concurrent := os.Getenv("GALLERYGRAB_CONCURRENT_FETCHES"); concurrent != "" {
		n, err := strconv.Atoi(concurrent)
		if err != nil {
			return fmt.Errorf("invalid GALLERYGRAB_CONCURRENT_FETCHES: %w", err)
		}
		c.Archive.ConcurrentFetches = n
	}
	if ttl := os.Getenv("GALLERYGRAB_RESULT_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid GALLERYGRAB_RESULT_TTL: %w", err)
		}
		c.Store.TTL = d
	}
	if level := os.Getenv("GALLERYGRAB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("GALLERYGRAB_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry max attempts must be at least 1")
	}
	if c.Retry.BackoffBase < 0 {
		return errors.New("retry backoff base must not be negative")
	}
	if c.Archive.ConcurrentFetches < 1 {
		return errors.New("archive concurrent fetches must be at least 1")
	}
	if c.Store.TTL <= 0 {
		return errors.New("store TTL must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("unknown log level: %s", c.Logging.Level)
	}
	return nil
}

// ApplyFlags applies command line flag overrides to the configuration
func (c *Config) ApplyFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "addr":
			if v, ok := value.(string); ok {
				c.Server.Addr = v
			}
		case "fetch-timeout":
			if v, ok := value.(time.Duration); ok {
				c.Fetch.Timeout = v
			}
		case "max-attempts":
			if v, ok := value.(int); ok {
				c.Retry.MaxAttempts = v
			}
		case "concurrent-fetches":
			if v, ok := value.(int); ok {
				c.Archive.ConcurrentFetches = v
			}
		case "result-ttl":
			if v, ok := value.(time.Duration); ok {
				c.Store.TTL = v
			}
		case "log-level":
			if v, ok := value.(string); ok {
				c.Logging.Level = v
			}
		}
	}
}

// Load loads configuration from all sources in priority order:
// defaults < config file < .env file < environment < flags
func Load(configFile string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	// Load .env file if present (ignore if missing)
	_ = godotenv.Load()

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
