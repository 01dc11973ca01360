package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the MCP service configuration.
type Config struct {
	// Server
	Host      string `env:"MCP_HOST" envDefault:"0.0.0.0"`
	Port      int    `env:"MCP_PORT" envDefault:"8080"`
	TimeoutMS int    `env:"TIMEOUT_MS" envDefault:"35000"`

	// DeBank
	DeBankBaseURL      string  `env:"DEBANK_BASE_URL" envDefault:"https://pro-openapi.debank.com"`
	DeBankAccessKey    string  `env:"DEBANK_ACCESS_KEY"`
	UpstreamTimeoutSec int     `env:"UPSTREAM_TIMEOUT_SEC" envDefault:"30"`
	UpstreamRPS        float64 `env:"UPSTREAM_RPS" envDefault:"0"`

	// Redis audit stream (disabled when RedisURL is empty)
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	AuditStream   string `env:"AUDIT_STREAM" envDefault:"debank:tool_calls"`
	AuditMaxLen   int64  `env:"AUDIT_MAXLEN" envDefault:"10000"`

	// HTTP
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Observability
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	PrometheusPort int    `env:"PROMETHEUS_PORT" envDefault:"9092"`
}

// Timeout returns the per-request timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// UpstreamTimeout returns the per-call DeBank timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSec) * time.Second
}

// Addr returns the MCP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuditEnabled reports whether tool calls are published to Redis.
func (c *Config) AuditEnabled() bool {
	return c.RedisURL != ""
}

// LoadFromEnv loads configuration from environment variables.
// Values from a .env file in the working directory are applied first;
// variables already set in the environment win.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	opts := env.Options{
		Prefix: "",
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	for i := range cfg.CORSAllowedOrigins {
		cfg.CORSAllowedOrigins[i] = strings.TrimSpace(cfg.CORSAllowedOrigins[i])
	}
	cfg.DeBankBaseURL = strings.TrimRight(cfg.DeBankBaseURL, "/")

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.PrometheusPort < 1 || c.PrometheusPort > 65535 {
		return fmt.Errorf("invalid prometheus port: %d", c.PrometheusPort)
	}

	if c.PrometheusPort == c.Port {
		return fmt.Errorf("prometheus port must differ from MCP port %d", c.Port)
	}

	if c.TimeoutMS < 1 {
		return fmt.Errorf("timeout must be at least 1ms, got %dms", c.TimeoutMS)
	}

	if c.UpstreamTimeoutSec < 1 {
		return fmt.Errorf("upstream timeout must be at least 1s, got %ds", c.UpstreamTimeoutSec)
	}

	if c.UpstreamRPS < 0 {
		return fmt.Errorf("upstream rps cannot be negative: %v", c.UpstreamRPS)
	}

	if c.DeBankAccessKey == "" {
		return fmt.Errorf("DEBANK_ACCESS_KEY is required")
	}

	if u, err := url.Parse(c.DeBankBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid DeBank base URL: %q", c.DeBankBaseURL)
	}

	if c.AuditEnabled() {
		if c.AuditStream == "" {
			return fmt.Errorf("audit stream name cannot be empty")
		}
		if c.AuditMaxLen < 1 {
			return fmt.Errorf("audit max length must be positive, got %d", c.AuditMaxLen)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
