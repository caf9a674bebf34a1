// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Cache backends understood by the gateway.
const (
	CacheFile     = "file"
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

// Config holds all application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Token, when set, is required as a bearer token on every API route.
	Token string `env:"GATEWAY_TOKEN"`

	SlideShare SlideShareConfig
	Cache      CacheConfig
}

// SlideShareConfig holds the API account
type SlideShareConfig struct {
	APIKey       string        `env:"SLIDESHARE_API_KEY"`
	SharedSecret string        `env:"SLIDESHARE_SHARED_SECRET"`
	Username     string        `env:"SLIDESHARE_USERNAME"`
	Password     string        `env:"SLIDESHARE_PASSWORD"`
	BaseURL      string        `env:"SLIDESHARE_BASE_URL"`
	HTTPTimeout  time.Duration `env:"SLIDESHARE_HTTP_TIMEOUT" envDefault:"5s"`
}

// CacheConfig selects and configures the response cache
type CacheConfig struct {
	Backend     string        `env:"CACHE_BACKEND" envDefault:"file"`
	Dir         string        `env:"CACHE_DIR"`
	TTL         time.Duration `env:"CACHE_TTL" envDefault:"12h"`
	RedisURL    string        `env:"CACHE_REDIS_URL"`
	DatabaseURL string        `env:"CACHE_DATABASE_URL"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// HasCredentials returns true if the API key and shared secret are set
func (c *Config) HasCredentials() bool {
	return c.SlideShare.APIKey != "" && c.SlideShare.SharedSecret != ""
}

// HasUploadAccount returns true if a username and password are set
func (c *Config) HasUploadAccount() bool {
	return c.SlideShare.Username != "" && c.SlideShare.Password != ""
}

// Level returns the configured zerolog level.
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.LogLevel)
}

// Validate checks the configuration is usable by the gateway
func (c *Config) Validate() error {
	if !c.HasCredentials() {
		return errors.New("SLIDESHARE_API_KEY and SLIDESHARE_SHARED_SECRET must be set")
	}
	if c.SlideShare.BaseURL != "" {
		u, err := url.Parse(c.SlideShare.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid SLIDESHARE_BASE_URL %q", c.SlideShare.BaseURL)
		}
	}
	if c.SlideShare.HTTPTimeout <= 0 {
		return fmt.Errorf("SLIDESHARE_HTTP_TIMEOUT must be positive, got %s", c.SlideShare.HTTPTimeout)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("CACHE_REDIS_URL is required for the redis cache")
		}
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			return errors.New("CACHE_DATABASE_URL is required for the postgres cache")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}
