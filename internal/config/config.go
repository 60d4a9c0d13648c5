// Package config loads the service configuration from YAML. The file is
// read once at startup; there is no hot reload. Values in the form
// ${VAR_NAME} are expanded from the environment before parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	AI      AIConfig      `yaml:"ai"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// AIConfig governs the orchestration layer.
type AIConfig struct {
	Enabled         bool           `yaml:"enabled"`
	DailyQuota      int            `yaml:"daily_quota"`
	MaxConcurrent   int            `yaml:"max_concurrent"`
	Timeout         time.Duration  `yaml:"timeout"`
	MaxOutputTokens int            `yaml:"max_output_tokens"`
	Provider        ProviderConfig `yaml:"provider"`
}

// ProviderConfig selects and configures the completion backend. APIKey
// accepts a secret reference (env://NAME, vault://path#field) or a
// literal value.
type ProviderConfig struct {
	Type    string `yaml:"type"` // anthropic, offline
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		AI: AIConfig{
			Enabled:         true,
			DailyQuota:      100,
			MaxConcurrent:   5,
			Timeout:         60 * time.Second,
			MaxOutputTokens: 1024,
			Provider: ProviderConfig{
				Type: "offline",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.AI.DailyQuota < 0 {
		return fmt.Errorf("ai.daily_quota cannot be negative")
	}
	if c.AI.MaxConcurrent < 0 {
		return fmt.Errorf("ai.max_concurrent cannot be negative")
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout cannot be negative")
	}

	if c.AI.Enabled {
		switch c.AI.Provider.Type {
		case "anthropic", "offline":
		case "":
			return fmt.Errorf("ai.provider.type is required when ai is enabled")
		default:
			return fmt.Errorf("unknown ai.provider.type: %q", c.AI.Provider.Type)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level: %q", c.Logging.Level)
	}

	return nil
}
