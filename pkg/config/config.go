package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the resolver service
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Instagram fetch settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Resolution cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Batch resolution settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Local downloads directory settings
	Downloads DownloadsConfig `yaml:"downloads" json:"downloads"`

	// Per-IP rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// InstagramConfig holds page-fetch configuration
type InstagramConfig struct {
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
	AcceptLanguage  string        `yaml:"accept_language" json:"accept_language"`
	SessionID       string        `yaml:"session_id" json:"session_id"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout" json:"pipeline_timeout"`
	MaxRedirects    int           `yaml:"max_redirects" json:"max_redirects"`
}

// CacheConfig holds resolution cache configuration
type CacheConfig struct {
	ResolutionTTL time.Duration `yaml:"resolution_ttl" json:"resolution_ttl"`
	ThumbnailTTL  time.Duration `yaml:"thumbnail_ttl" json:"thumbnail_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// BatchConfig holds batch resolution configuration
type BatchConfig struct {
	MaxURLs     int `yaml:"max_urls" json:"max_urls"`
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// DownloadsConfig holds local media download configuration
type DownloadsConfig struct {
	Directory     string        `yaml:"directory" json:"directory"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
	MaxAge        time.Duration `yaml:"max_age" json:"max_age"`
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerHour int  `yaml:"requests_per_hour" json:"requests_per_hour"`
	Enabled         bool `yaml:"enabled" json:"enabled"`
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
			ListenAddr:      ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Instagram: InstagramConfig{
			// Mobile profile avoids most interstitial redirects.
			UserAgent:       "Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
			AcceptLanguage:  "en-US,en;q=0.9",
			FetchTimeout:    12 * time.Second,
			PipelineTimeout: 20 * time.Second,
			MaxRedirects:    5,
		},
		Cache: CacheConfig{
			ResolutionTTL: 3 * time.Hour,
			ThumbnailTTL:  time.Hour,
			SweepInterval: 2 * time.Minute,
		},
		Batch: BatchConfig{
			MaxURLs:     10,
			Concurrency: 4,
		},
		Downloads: DownloadsConfig{
			Directory:     "./downloads",
			FetchTimeout:  30 * time.Second,
			RetryAttempts: 3,
			SweepInterval: time.Hour,
			MaxAge:        24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerHour: 200,
			Enabled:         true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if addr := os.Getenv("IGRESOLVER_LISTEN_ADDR"); addr != "" {
		c.Server.ListenAddr = addr
	}
	if ua := os.Getenv("IGRESOLVER_USER_AGENT"); ua != "" {
		c.Instagram.UserAgent = ua
	}
	if sessionID := os.Getenv("IGRESOLVER_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if timeout := os.Getenv("IGRESOLVER_FETCH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Instagram.FetchTimeout = d
		}
	}
	if ttl := os.Getenv("IGRESOLVER_RESOLUTION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			c.Cache.ResolutionTTL = d
		}
	}
	if dir := os.Getenv("IGRESOLVER_DOWNLOADS_DIR"); dir != "" {
		c.Downloads.Directory = dir
	}
	if rph := os.Getenv("IGRESOLVER_REQUESTS_PER_HOUR"); rph != "" {
		var val int
		fmt.Sscanf(rph, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerHour = val
		}
	}
	if logLevel := os.Getenv("IGRESOLVER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igresolver.yaml",
		".igresolver.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igresolver", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igresolver", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}

	if c.Instagram.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Instagram.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Instagram.PipelineTimeout < c.Instagram.FetchTimeout {
		errs = append(errs, errors.New("pipeline timeout must not be shorter than fetch timeout"))
	}
	if c.Instagram.MaxRedirects <= 0 {
		errs = append(errs, errors.New("max redirects must be positive"))
	}

	if c.Cache.ResolutionTTL <= 0 {
		errs = append(errs, errors.New("resolution TTL must be positive"))
	}
	if c.Cache.ThumbnailTTL <= 0 {
		errs = append(errs, errors.New("thumbnail TTL must be positive"))
	}

	if c.Batch.MaxURLs <= 0 {
		errs = append(errs, errors.New("batch max URLs must be positive"))
	}
	if c.Batch.MaxURLs > 10 {
		errs = append(errs, errors.New("batch max URLs should not exceed 10"))
	}
	if c.Batch.Concurrency <= 0 {
		errs = append(errs, errors.New("batch concurrency must be positive"))
	}

	if c.Downloads.Directory == "" {
		errs = append(errs, errors.New("downloads directory is required"))
	}
	if c.Downloads.MaxAge <= 0 {
		errs = append(errs, errors.New("downloads max age must be positive"))
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerHour <= 0 {
		errs = append(errs, errors.New("requests per hour must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load builds the effective configuration: defaults, then file, then env.
func Load(path string) (*Config, error) {
	// Load .env files if they exist (ignore errors)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igresolver.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
