package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// SubscriptionConfig describes a single ICS feed imported into the calendar.
type SubscriptionConfig struct {
	// ID prefixes the ids of imported events ("<id>:<UID>").
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
	// Priority is assigned to every imported event. Defaults to "medium".
	Priority string `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone days are bucketed in (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Database is the SQLite file holding events and tasks.
	Database string `yaml:"database" json:"database"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is the cron schedule for subscription syncs
	// (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Palette overrides priority colors, keyed by event priority
	// (high/medium/low) or task priority (A/B/C).
	Palette map[string]string `yaml:"palette,omitempty" json:"palette,omitempty"`

	Subscriptions []SubscriptionConfig `yaml:"subscriptions" json:"subscriptions"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// CacheDir holds fetched feed bodies and their ETags.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "UTC"
	defaultCron     = "*/15 * * * *"
	defaultDatabase = "data/lifecal.sqlite"
	defaultCacheDir = "cache/ics"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        defaultListen,
		Timezone:      defaultTimezone,
		Database:      defaultDatabase,
		LogLevel:      "info",
		RefreshCron:   defaultCron,
		Subscriptions: []SubscriptionConfig{},
		CacheDir:      defaultCacheDir,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Database == "" {
		c.Database = defaultDatabase
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultCron
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.Subscriptions == nil {
		c.Subscriptions = []SubscriptionConfig{}
	}
	for i := range c.Subscriptions {
		s := &c.Subscriptions[i]
		s.ID = strings.TrimSpace(s.ID)
		s.URL = strings.TrimSpace(s.URL)
		if s.Priority == "" {
			s.Priority = "medium"
		}
		if s.Name == "" {
			s.Name = s.ID
		}
	}
}

// Validate reports configuration that cannot be normalized away.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("refresh %q: %w", c.RefreshCron, err)
	}
	seen := make(map[string]bool, len(c.Subscriptions))
	for i, s := range c.Subscriptions {
		switch {
		case s.ID == "":
			return fmt.Errorf("subscriptions[%d]: id is required", i)
		case strings.Contains(s.ID, ":"):
			return fmt.Errorf("subscriptions[%d]: id %q must not contain ':'", i, s.ID)
		case seen[s.ID]:
			return fmt.Errorf("subscriptions[%d]: duplicate id %q", i, s.ID)
		case s.URL == "":
			return fmt.Errorf("subscriptions[%d]: url is required", i)
		}
		switch s.Priority {
		case "high", "medium", "low":
		default:
			return fmt.Errorf("subscriptions[%d]: unknown priority %q", i, s.Priority)
		}
		seen[s.ID] = true
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return errors.New("basic_auth: username is required")
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from the given YAML path. A missing file is
// created with the defaults (0600) and the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".lifecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
