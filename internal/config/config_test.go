package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone: Europe/Berlin
log_level: DEBUG
palette:
  high: "#ff0000"
subscriptions:
  - id: work
    url: https://example.com/work.ics
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultListen, cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "#ff0000", cfg.Palette["high"])
	require.Len(t, cfg.Subscriptions, 1)
	assert.Equal(t, "medium", cfg.Subscriptions[0].Priority)
	assert.Equal(t, "work", cfg.Subscriptions[0].Name)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"bad timezone": func(c *Config) { c.Timezone = "Mars/Olympus" },
		"missing id":   func(c *Config) { c.Subscriptions = []SubscriptionConfig{{URL: "u"}} },
		"colon in id":  func(c *Config) { c.Subscriptions = []SubscriptionConfig{{ID: "a:b", URL: "u"}} },
		"duplicate id": func(c *Config) { c.Subscriptions = []SubscriptionConfig{{ID: "a", URL: "u"}, {ID: "a", URL: "v"}} },
		"missing url":  func(c *Config) { c.Subscriptions = []SubscriptionConfig{{ID: "a"}} },
		"bad priority": func(c *Config) { c.Subscriptions = []SubscriptionConfig{{ID: "a", URL: "u", Priority: "urgent"}} },
		"bad cron":     func(c *Config) { c.RefreshCron = "hourly-ish" },
		"auth no user": func(c *Config) { c.BasicAuth = &BasicAuthConfig{Password: "x"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			cfg.Normalize()
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Subscriptions = []SubscriptionConfig{{ID: "a", URL: "u"}}
	cfg.Normalize()
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.BasicAuth = &BasicAuthConfig{Username: "me", Password: "secret"}
	cfg.Subscriptions = append(cfg.Subscriptions, SubscriptionConfig{ID: "home", URL: "https://example.com/h.ics", Priority: "low"})
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
