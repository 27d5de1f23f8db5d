package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

var validQualities = map[string]bool{
	"1080": true, "720": true, "480": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if !validLogFormats[c.Server.LogFormat] {
		errs = append(errs, fmt.Sprintf("server.log_format: must be text or json; got %q", c.Server.LogFormat))
	}

	if c.Database.EventRetention < 0 {
		errs = append(errs, "database.event_retention: must not be negative")
	}

	// Catalog
	errs = append(errs, checkURL("catalog.api_base", c.Catalog.APIBase, "http", "https")...)
	errs = append(errs, checkURL("catalog.media_base", c.Catalog.MediaBase, "http", "https")...)
	if c.Catalog.Timeout < 0 {
		errs = append(errs, "catalog.timeout: must not be negative")
	}
	if c.Catalog.ImageTimeout < 0 {
		errs = append(errs, "catalog.image_timeout: must not be negative")
	}
	if c.Catalog.RateLimit < 0 {
		errs = append(errs, "catalog.rate_limit: must not be negative")
	}
	if c.Catalog.Retries < 0 {
		errs = append(errs, "catalog.retries: must not be negative")
	}

	// Targets
	errs = append(errs, c.Targets.All.validate("targets.all")...)
	errs = append(errs, c.Targets.Favorites.validate("targets.favorites")...)
	if c.Targets.Favorites.Enabled && c.Catalog.Token == "" {
		errs = append(errs, "catalog.token: required when targets.favorites is enabled")
	}
	if c.Targets.All.Enabled && c.Targets.Favorites.Enabled && c.Targets.All.Path != "" &&
		c.Targets.All.Path == c.Targets.Favorites.Path {
		errs = append(errs, "targets: all and favorites must use different paths")
	}

	if !validQualities[strings.TrimSuffix(c.Generator.Quality, "p")] {
		errs = append(errs, fmt.Sprintf("generator.quality: must be one of 1080, 720, 480; got %q", c.Generator.Quality))
	}

	// Watcher
	if c.Watcher.Enabled {
		errs = append(errs, checkURL("watcher.url", c.Watcher.URL, "ws", "wss")...)
		if c.Watcher.BaseDelay <= 0 {
			errs = append(errs, "watcher.base_delay: must be positive")
		}
		if c.Watcher.MaxDelay < c.Watcher.BaseDelay {
			errs = append(errs, "watcher.max_delay: must not be less than base_delay")
		}
		if c.Watcher.Jitter < 0 {
			errs = append(errs, "watcher.jitter: must not be negative")
		}
		if c.Watcher.QueueSize < 1 {
			errs = append(errs, fmt.Sprintf("watcher.queue_size: must be at least 1, got %d", c.Watcher.QueueSize))
		}
		if c.Watcher.Workers < 1 {
			errs = append(errs, fmt.Sprintf("watcher.workers: must be at least 1, got %d", c.Watcher.Workers))
		}
	}

	// Media host
	if c.MediaHost.URL != "" {
		errs = append(errs, checkURL("mediahost.url", c.MediaHost.URL, "http", "https")...)
		if c.MediaHost.APIKey == "" {
			errs = append(errs, "mediahost.api_key: required when mediahost is configured")
		}
	}
	if (c.MediaHost.LocalPath == "") != (c.MediaHost.RemotePath == "") {
		errs = append(errs, "mediahost: local_path and remote_path must be set together")
	}

	return errs
}

func (t TargetConfig) validate(prefix string) []string {
	var errs []string
	if t.Enabled && t.Path == "" {
		errs = append(errs, prefix+".path: required when enabled")
	}
	if t.PageSize < 1 {
		errs = append(errs, fmt.Sprintf("%s.page_size: must be at least 1, got %d", prefix, t.PageSize))
	}
	if t.MaxPages < 1 {
		errs = append(errs, fmt.Sprintf("%s.max_pages: must be at least 1, got %d", prefix, t.MaxPages))
	}
	if t.Schedule != "" {
		if _, err := cron.ParseStandard(t.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("%s.schedule: %v", prefix, err))
		}
	}
	return errs
}

func checkURL(field, raw string, schemes ...string) []string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return []string{fmt.Sprintf("%s: invalid URL %q", field, raw)}
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return []string{fmt.Sprintf("%s: scheme must be one of %s; got %q", field, strings.Join(schemes, ", "), u.Scheme)}
}
