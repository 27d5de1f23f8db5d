// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Targets   TargetsConfig   `toml:"targets"`
	Generator GeneratorConfig `toml:"generator"`
	Watcher   WatcherConfig   `toml:"watcher"`
	MediaHost MediaHostConfig `toml:"mediahost"`
}

type ServerConfig struct {
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	MetricsAddr string `toml:"metrics_addr"` // empty disables the metrics listener
}

type DatabaseConfig struct {
	Path           string        `toml:"path"`
	EventRetention time.Duration `toml:"event_retention"` // persisted events older than this are pruned daily
}

type CatalogConfig struct {
	APIBase      string        `toml:"api_base"`
	MediaBase    string        `toml:"media_base"`
	Token        string        `toml:"token"`
	Timeout      time.Duration `toml:"timeout"`
	RateLimit    float64       `toml:"rate_limit"` // requests per second, 0 disables
	Retries      int           `toml:"retries"`
	ImageTimeout time.Duration `toml:"image_timeout"`
}

type TargetsConfig struct {
	All       TargetConfig `toml:"all"`
	Favorites TargetConfig `toml:"favorites"`
}

type TargetConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path"`
	PageSize int    `toml:"page_size"`
	MaxPages int    `toml:"max_pages"`
	Schedule string `toml:"schedule"` // cron spec, empty disables scheduling
}

type GeneratorConfig struct {
	Quality string `toml:"quality"`
}

type WatcherConfig struct {
	Enabled   bool          `toml:"enabled"`
	URL       string        `toml:"url"`
	BaseDelay time.Duration `toml:"base_delay"`
	MaxDelay  time.Duration `toml:"max_delay"`
	Jitter    time.Duration `toml:"jitter"`
	QueueSize int           `toml:"queue_size"`
	Workers   int           `toml:"workers"`
}

type MediaHostConfig struct {
	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	LocalPath  string `toml:"local_path"`
	RemotePath string `toml:"remote_path"`
}

// Default values.
const (
	DefaultAPIBase   = "https://api.anilibria.app/api/v1"
	DefaultMediaBase = "https://www.anilibria.tv"
	DefaultWatchURL  = "wss://api.anilibria.tv/v3/ws/"
	DefaultDBPath    = "./data/anistrm.db"
)

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads the configuration file and applies defaults.
// Unresolved environment variables are left in place.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.EventRetention == 0 {
		c.Database.EventRetention = 30 * 24 * time.Hour
	}

	if c.Catalog.APIBase == "" {
		c.Catalog.APIBase = DefaultAPIBase
	}
	if c.Catalog.MediaBase == "" {
		c.Catalog.MediaBase = DefaultMediaBase
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = 30 * time.Second
	}
	if c.Catalog.Retries == 0 {
		c.Catalog.Retries = 3
	}
	if c.Catalog.ImageTimeout == 0 {
		c.Catalog.ImageTimeout = 15 * time.Second
	}

	defaultTarget(&c.Targets.All, 50, 100)
	defaultTarget(&c.Targets.Favorites, 50, 50)

	if c.Generator.Quality == "" {
		c.Generator.Quality = "1080"
	}

	if c.Watcher.URL == "" {
		c.Watcher.URL = DefaultWatchURL
	}
	if c.Watcher.BaseDelay == 0 {
		c.Watcher.BaseDelay = 2 * time.Second
	}
	if c.Watcher.MaxDelay == 0 {
		c.Watcher.MaxDelay = 5 * time.Minute
	}
	if c.Watcher.Jitter == 0 {
		c.Watcher.Jitter = time.Second
	}
	if c.Watcher.QueueSize == 0 {
		c.Watcher.QueueSize = 64
	}
	if c.Watcher.Workers == 0 {
		c.Watcher.Workers = 2
	}
}

func defaultTarget(t *TargetConfig, pageSize, maxPages int) {
	if t.PageSize == 0 {
		t.PageSize = pageSize
	}
	if t.MaxPages == 0 {
		t.MaxPages = maxPages
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// substituteEnvVars replaces environment references and returns the names
// of unset variables without a default, sorted and deduplicated. Comments
// are left untouched.
func substituteEnvVars(content string) (string, []string) {
	seen := make(map[string]bool)
	replace := func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := groups[1], groups[2] != "", groups[3]

		value, ok := os.LookupEnv(name)
		if hasDefault && value == "" {
			return def
		}
		if !ok {
			seen[name] = true
			return match // Leave unchanged if not found
		}
		return value
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		cut := commentStart(line)
		lines[i] = envVarPattern.ReplaceAllStringFunc(line[:cut], replace) + line[cut:]
	}
	out := strings.Join(lines, "\n")

	var missing []string
	for name := range seen {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return out, missing
}

// commentStart returns the index of the first '#' outside a TOML string on
// line, or len(line). Multi-line strings are not tracked.
func commentStart(line string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == '"' && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return i
		}
	}
	return len(line)
}

// RedactedToken returns the catalog token with all but the last four
// characters masked.
func (c *Config) RedactedToken() string {
	t := c.Catalog.Token
	if len(t) <= 4 {
		return strings.Repeat("*", len(t))
	}
	return strings.Repeat("*", len(t)-4) + t[len(t)-4:]
}
