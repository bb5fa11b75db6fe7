package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Session  SessionConfig  `toml:"session"`
	Accounts AccountsConfig `toml:"accounts"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// TMDBConfig contains catalog provider settings.
type TMDBConfig struct {
	APIKey          string  `toml:"api_key"`
	ReadAccessToken string  `toml:"read_access_token"`
	BaseURL         string  `toml:"base_url"`
	ImageBaseURL    string  `toml:"image_base_url"`
	Language        string  `toml:"language"`
	RateLimit       float64 `toml:"rate_limit"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout for catalog requests.
func (c TMDBConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig selects where the current identity record is kept.
//
// Backend is "file" (a JSON file in Dir) or "sqlite" (a row in the database).
type SessionConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Slot    string `toml:"slot"`
}

// AccountsConfig selects the authenticator: "memory" (seeded demo accounts) or "sqlite".
type AccountsConfig struct {
	Backend string `toml:"backend"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains log level and the TUI log file location.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("%w: session.backend must be file or sqlite, got %q", ErrInvalidConfig, c.Session.Backend)
	}

	switch c.Accounts.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: accounts.backend must be memory or sqlite, got %q", ErrInvalidConfig, c.Accounts.Backend)
	}

	if c.Session.Slot == "" {
		return fmt.Errorf("%w: session.slot is empty", ErrInvalidConfig)
	}

	return nil
}

// NeedsDatabase reports whether any configured backend uses SQLite.
func (c *Config) NeedsDatabase() bool {
	return c.Session.Backend == "sqlite" || c.Accounts.Backend == "sqlite"
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
