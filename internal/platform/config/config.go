// Package config loads application configuration from environment
// variables. All variables use the STUDY_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Content  ContentConfig
	Sandbox  SandboxConfig
	Client   ClientConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL
// selects the in-memory progress store.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables
// the progress read cache.
type CacheConfig struct {
	URL        string
	TTLSeconds int
}

// ContentConfig holds lesson content settings.
type ContentConfig struct {
	Dir string
}

// SandboxConfig holds code-execution sandbox settings.
type SandboxConfig struct {
	Enabled        bool
	TimeoutSeconds int
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	ServerURL   string
	SessionPath string // empty selects the default user config location
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with STUDY_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STUDY_SERVER_PORT", 8080),
			Host: envStr("STUDY_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("STUDY_DATABASE_URL", ""),
			MaxConns: envInt("STUDY_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("STUDY_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL:        envStr("STUDY_CACHE_URL", ""),
			TTLSeconds: envInt("STUDY_CACHE_TTL_SECONDS", 300),
		},
		Content: ContentConfig{
			Dir: envStr("STUDY_CONTENT_DIR", "./content"),
		},
		Sandbox: SandboxConfig{
			Enabled:        envBool("STUDY_SANDBOX_ENABLED", true),
			TimeoutSeconds: envInt("STUDY_SANDBOX_TIMEOUT_SECONDS", 5),
		},
		Client: ClientConfig{
			ServerURL:   envStr("STUDY_CLIENT_SERVER_URL", "http://localhost:8080"),
			SessionPath: envStr("STUDY_CLIENT_SESSION_PATH", ""),
		},
		Log: LogConfig{
			Level:  envStr("STUDY_LOG_LEVEL", "info"),
			Format: envStr("STUDY_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Content.Dir == "" {
		return fmt.Errorf("STUDY_CONTENT_DIR is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("STUDY_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Sandbox.TimeoutSeconds <= 0 {
		return fmt.Errorf("STUDY_SANDBOX_TIMEOUT_SECONDS must be positive, got %d", c.Sandbox.TimeoutSeconds)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
