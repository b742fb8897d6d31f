// Package config provides configuration loading and validation for the server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the server configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or come from
// environment variables.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Conversation tuning
	HistoryLimit    int `json:"history_limit,omitempty"`     // Messages of history fed into each turn
	TurnTimeoutSecs int `json:"turn_timeout_secs,omitempty"` // Bound on a single generation call
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithEnv returns a new Config with empty fields filled from environment
// variables (DATABASE_URL, GEMINI_API_KEY, PORT). Explicit config file values
// win over the environment.
func (c *Config) MergeWithEnv() Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if result.APIKey == "" {
		result.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if result.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			result.Port = port
		}
	}
	if result.Port == 0 {
		result.Port = 8080
	}

	return result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("config error: 'history_limit' must be non-negative")
	}
	if c.TurnTimeoutSecs < 0 {
		return fmt.Errorf("config error: 'turn_timeout_secs' must be non-negative")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required (or set DATABASE_URL)")
	}
	if c.APIKey == "" {
		return fmt.Errorf("config error: 'api_key' is required (or set GEMINI_API_KEY)")
	}
	return nil
}
