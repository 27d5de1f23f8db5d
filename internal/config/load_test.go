package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	t.Setenv("ANISTRM_TEST_TOKEN", "tok-123")
	path := writeConfig(t, `
[catalog]
token = "${ANISTRM_TEST_TOKEN}"
timeout = "10s"
rate_limit = 2.5

[targets.all]
enabled = true
path = "/srv/all"
schedule = "0 4 * * *"

[targets.favorites]
enabled = true
path = "/srv/fav"
max_pages = 5

[generator]
quality = "720p"

[watcher]
enabled = true
workers = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.Catalog.Token)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.InDelta(t, 2.5, cfg.Catalog.RateLimit, 0.001)
	assert.Equal(t, "/srv/all", cfg.Targets.All.Path)
	assert.Equal(t, 50, cfg.Targets.Favorites.PageSize, "default page size")
	assert.Equal(t, 5, cfg.Targets.Favorites.MaxPages)
	assert.Equal(t, 4, cfg.Watcher.Workers)
	assert.Equal(t, 64, cfg.Watcher.QueueSize)
	assert.Equal(t, "720p", cfg.Generator.Quality)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "text", cfg.Server.LogFormat)
	assert.Empty(t, cfg.Server.MetricsAddr)
	assert.Equal(t, DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, 720*time.Hour, cfg.Database.EventRetention)
	assert.Equal(t, DefaultAPIBase, cfg.Catalog.APIBase)
	assert.Equal(t, DefaultMediaBase, cfg.Catalog.MediaBase)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 3, cfg.Catalog.Retries)
	assert.Equal(t, 15*time.Second, cfg.Catalog.ImageTimeout)
	assert.Equal(t, 100, cfg.Targets.All.MaxPages)
	assert.Equal(t, 50, cfg.Targets.Favorites.MaxPages)
	assert.Equal(t, "1080", cfg.Generator.Quality)
	assert.Equal(t, DefaultWatchURL, cfg.Watcher.URL)
	assert.Equal(t, 2*time.Second, cfg.Watcher.BaseDelay)
	assert.Equal(t, 5*time.Minute, cfg.Watcher.MaxDelay)
	assert.Equal(t, time.Second, cfg.Watcher.Jitter)
	assert.Equal(t, 2, cfg.Watcher.Workers)
	assert.False(t, cfg.Watcher.Enabled)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
[catalog]
token = "${ANISTRM_TEST_MISSING_TOKEN_12345}"
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"ANISTRM_TEST_MISSING_TOKEN_12345"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), path)

	cfg, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, "${ANISTRM_TEST_MISSING_TOKEN_12345}", cfg.Catalog.Token)
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, `
[server]
log_level = "loud"

[targets.favorites]
enabled = true
path = "/srv/fav"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.log_level")
	assert.Contains(t, err.Error(), "catalog.token")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")

	_, err = Load(writeConfig(t, "[server\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
