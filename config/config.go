/*
Package config loads server configuration from YAML with environment
variable overrides.

PRECEDENCE (lowest to highest):
  1. Built-in defaults (Default)
  2. YAML config file, when a path is given
  3. LEAVE_* environment variables

The seed roster ships with a built-in default so the server runs with no
config file at all; a `seed:` block in the file replaces it wholesale.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/warp/leave-ledger/ledger"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig   `yaml:"server"`
	Log    LogConfig      `yaml:"log"`
	Audit  AuditConfig    `yaml:"audit"`
	Feed   FeedConfig     `yaml:"feed"`
	Seed   []SeedEmployee `yaml:"seed"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logging settings. Level accepts zerolog level names
// (trace, debug, info, warn, error). Pretty switches from JSON to the
// human console writer.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// AuditConfig selects the audit journal backend.
type AuditConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file. Required for the sqlite backend.
	Path string `yaml:"path"`

	// Buffer is the recorder hand-off size. Non-positive uses the
	// recorder default.
	Buffer int `yaml:"buffer"`
}

// FeedConfig controls the Kafka change feed. Disabled by default.
type FeedConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Buffer  int      `yaml:"buffer"`
}

// SeedEmployee is one roster row as written in the config file. History
// dates are wire-form strings, validated by SeedRecords.
type SeedEmployee struct {
	ID      string   `yaml:"id"`
	Balance int      `yaml:"balance"`
	History []string `yaml:"history"`
}

// Default returns the configuration the server runs with when no file or
// environment overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		Audit:  AuditConfig{Backend: "memory"},
		Feed:   FeedConfig{},
		Seed: []SeedEmployee{
			{ID: "E001", Balance: 18, History: []string{"2024-12-25", "2025-01-01"}},
			{ID: "E002", Balance: 20},
			{ID: "Prakash", Balance: 20},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and LEAVE_* environment variables, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("LEAVE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("LEAVE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if pretty := os.Getenv("LEAVE_LOG_PRETTY"); pretty != "" {
		if val, err := strconv.ParseBool(pretty); err == nil {
			c.Log.Pretty = val
		}
	}
	if backend := os.Getenv("LEAVE_AUDIT_BACKEND"); backend != "" {
		c.Audit.Backend = backend
	}
	if path := os.Getenv("LEAVE_AUDIT_PATH"); path != "" {
		c.Audit.Path = path
	}
	if enabled := os.Getenv("LEAVE_FEED_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			c.Feed.Enabled = val
		}
	}
	if brokers := os.Getenv("LEAVE_FEED_BROKERS"); brokers != "" {
		c.Feed.Brokers = splitList(brokers)
	}
	if topic := os.Getenv("LEAVE_FEED_TOPIC"); topic != "" {
		c.Feed.Topic = topic
	}
}

// Validate checks cross-field constraints. The seed roster is validated
// through SeedRecords so config errors surface at startup, not on the
// first request.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: bad log.level %q: %w", c.Log.Level, err)
	}

	switch c.Audit.Backend {
	case "memory":
	case "sqlite":
		if c.Audit.Path == "" {
			return fmt.Errorf("config: audit.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("config: bad audit.backend %q: want memory or sqlite", c.Audit.Backend)
	}

	if c.Feed.Enabled && len(c.Feed.Brokers) == 0 {
		return fmt.Errorf("config: feed.brokers is required when the feed is enabled")
	}

	if _, err := c.SeedRecords(); err != nil {
		return err
	}
	return nil
}

// SeedRecords converts the roster into ledger seed records, validating
// every history date.
func (c *Config) SeedRecords() ([]ledger.SeedRecord, error) {
	records := make([]ledger.SeedRecord, 0, len(c.Seed))
	for _, e := range c.Seed {
		rec := ledger.SeedRecord{
			ID:      ledger.EmployeeID(e.ID),
			Balance: e.Balance,
		}
		for _, s := range e.History {
			d, err := ledger.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("config: seed employee %q: %w", e.ID, err)
			}
			rec.History = append(rec.History, d)
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
