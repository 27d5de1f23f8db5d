package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Catalog.Token = "tok"
	cfg.Targets.All.Enabled = true
	cfg.Targets.All.Path = "/srv/all"
	cfg.Targets.Favorites.Enabled = true
	cfg.Targets.Favorites.Path = "/srv/fav"
	cfg.Watcher.Enabled = true
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string // substring of the single expected error; empty means valid
	}{
		{"valid", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "trace" }, "server.log_level"},
		{"bad log format", func(c *Config) { c.Server.LogFormat = "xml" }, "server.log_format"},
		{"negative retention", func(c *Config) { c.Database.EventRetention = -time.Hour }, "database.event_retention"},
		{"api base scheme", func(c *Config) { c.Catalog.APIBase = "ftp://x" }, "catalog.api_base"},
		{"api base invalid", func(c *Config) { c.Catalog.APIBase = "not a url" }, "catalog.api_base"},
		{"negative retries", func(c *Config) { c.Catalog.Retries = -1 }, "catalog.retries"},
		{"negative rate", func(c *Config) { c.Catalog.RateLimit = -1 }, "catalog.rate_limit"},
		{"enabled target without path", func(c *Config) { c.Targets.All.Path = "" }, "targets.all.path"},
		{"disabled target without path", func(c *Config) { c.Targets.All.Enabled = false; c.Targets.All.Path = "" }, ""},
		{"page size", func(c *Config) { c.Targets.All.PageSize = 0 }, "targets.all.page_size"},
		{"max pages", func(c *Config) { c.Targets.Favorites.MaxPages = -2 }, "targets.favorites.max_pages"},
		{"bad schedule", func(c *Config) { c.Targets.All.Schedule = "every tuesday" }, "targets.all.schedule"},
		{"descriptor schedule", func(c *Config) { c.Targets.All.Schedule = "@every 6h" }, ""},
		{"favorites need token", func(c *Config) { c.Catalog.Token = "" }, "catalog.token"},
		{"same paths", func(c *Config) { c.Targets.Favorites.Path = "/srv/all" }, "different paths"},
		{"bad quality", func(c *Config) { c.Generator.Quality = "4k" }, "generator.quality"},
		{"quality with suffix", func(c *Config) { c.Generator.Quality = "480p" }, ""},
		{"watcher scheme", func(c *Config) { c.Watcher.URL = "https://api" }, "watcher.url"},
		{"watcher delays", func(c *Config) { c.Watcher.MaxDelay = time.Second }, "watcher.max_delay"},
		{"watcher workers", func(c *Config) { c.Watcher.Workers = 0 }, "watcher.workers"},
		{"watcher queue", func(c *Config) { c.Watcher.QueueSize = 0 }, "watcher.queue_size"},
		{"disabled watcher not checked", func(c *Config) { c.Watcher.Enabled = false; c.Watcher.Workers = 0 }, ""},
		{"mediahost key", func(c *Config) { c.MediaHost.URL = "http://jellyfin:8096" }, "mediahost.api_key"},
		{"mediahost mapping", func(c *Config) { c.MediaHost.LocalPath = "/srv" }, "remote_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.want == "" {
				assert.Empty(t, errs)
				return
			}
			if assert.Len(t, errs, 1, strings.Join(errs, "; ")) {
				assert.Contains(t, errs[0], tt.want)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	assert.Empty(t, (&ConfigError{}).Error())
	assert.False(t, (&ConfigError{}).HasErrors())

	err := &ConfigError{Missing: []string{"A", "B"}, Errors: []string{"x: bad"}}
	assert.True(t, err.HasErrors())
	assert.Equal(t, "missing environment variables: A, B\nvalidation failed:\n  - x: bad", err.Error())
}

func TestRedactedToken(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.RedactedToken())
	cfg.Catalog.Token = "abc"
	assert.Equal(t, "***", cfg.RedactedToken())
	cfg.Catalog.Token = "secret-token"
	assert.Equal(t, "********oken", cfg.RedactedToken())
}
