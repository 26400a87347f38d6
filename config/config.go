// Package config resolves runtime configuration from a JSON file with
// environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Duration is a time.Duration that reads "1s"-style strings from both
// JSON and environment variables.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Server  ServerConfig  `json:"server"`
	Session SessionConfig `json:"session"`
	Retry   RetryConfig   `json:"retry"`
	Logging LoggingConfig `json:"logging"`
}

type ServerConfig struct {
	BaseURL   string `json:"base_url" env:"RELAY_SERVER_BASE_URL"`
	AuthToken string `json:"auth_token" env:"RELAY_SERVER_AUTH_TOKEN"`
}

type SessionConfig struct {
	// Store selects the persistence backend: "json" or "sqlite".
	Store string `json:"store" env:"RELAY_SESSION_STORE"`
	Path  string `json:"path" env:"RELAY_SESSION_PATH"`
}

type RetryConfig struct {
	MaxRetries int      `json:"max_retries" env:"RELAY_RETRY_MAX_RETRIES"`
	BaseDelay  Duration `json:"base_delay" env:"RELAY_RETRY_BASE_DELAY"`
	MaxDelay   Duration `json:"max_delay" env:"RELAY_RETRY_MAX_DELAY"`
}

type LoggingConfig struct {
	// File receives structured logs; the TUI owns the terminal.
	File  string `json:"file" env:"RELAY_LOG_FILE"`
	Level string `json:"level" env:"RELAY_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".relay")
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		Session: SessionConfig{
			Store: "json",
			Path:  filepath.Join(dataDir, "session.json"),
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  Duration(1 * time.Second),
			MaxDelay:   Duration(8 * time.Second),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(dataDir, "relay.log"),
			Level: "info",
		},
	}
}

// LoadConfig reads path, overlaying its values on the defaults and
// then applying environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case "json", "sqlite":
	default:
		return fmt.Errorf("config: unknown session store %q", c.Session.Store)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must not be negative")
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("config: invalid retry delays")
	}
	return nil
}
