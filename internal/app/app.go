// Package app assembles the anistrm components from configuration. It is
// shared by the daemon and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/afero"

	"github.com/vmunix/anistrm/internal/adapters/mediahost"
	"github.com/vmunix/anistrm/internal/backoff"
	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/internal/config"
	"github.com/vmunix/anistrm/internal/events"
	"github.com/vmunix/anistrm/internal/favorites"
	"github.com/vmunix/anistrm/internal/generator"
	"github.com/vmunix/anistrm/internal/handlers"
	"github.com/vmunix/anistrm/internal/metrics"
	"github.com/vmunix/anistrm/internal/server"
	"github.com/vmunix/anistrm/internal/store"
	"github.com/vmunix/anistrm/internal/tasks"
	"github.com/vmunix/anistrm/internal/watcher"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Store     *store.Store
	EventLog  *events.EventLog
	Bus       *events.Bus
	Metrics   *metrics.Metrics
	Catalog   *catalog.Client
	Generator *generator.Generator
	Favorites *favorites.Index

	AllTask       *tasks.AllTask
	FavoritesTask *tasks.FavoritesTask
	Titles        *tasks.TitleSyncer

	watcher *watcher.Watcher
	logger  *slog.Logger
}

type options struct {
	fs         afero.Fs
	httpClient *http.Client
}

// Option overrides a default collaborator.
type Option func(*options)

// WithFs sets the filesystem the generator writes to.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithHTTPClient sets the HTTP client used for catalog, images and the
// media host.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// Open opens the database and builds every component.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := OpenDB(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		DB:        db,
		Store:     store.New(db),
		EventLog:  events.NewEventLog(db),
		Metrics:   metrics.New(),
		Favorites: favorites.New(),
		logger:    logger,
	}
	a.Bus = events.NewBus(a.EventLog, logger)
	a.Bus.OnDrop(a.Metrics.ObserveDrop)

	ids, err := a.Store.LoadFavorites(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	a.Favorites.Update(ids)
	a.Metrics.SetFavorites(len(ids))

	catalogOpts := []catalog.Option{
		catalog.WithBaseURL(cfg.Catalog.APIBase),
		catalog.WithMediaBase(cfg.Catalog.MediaBase),
		catalog.WithRateLimit(cfg.Catalog.RateLimit),
		catalog.WithRetries(cfg.Catalog.Retries),
		catalog.WithObserver(a.Metrics),
		catalog.WithLogger(logger),
	}
	if o.httpClient != nil {
		catalogOpts = append(catalogOpts, catalog.WithHTTPClient(o.httpClient))
	} else {
		catalogOpts = append(catalogOpts, catalog.WithTimeout(cfg.Catalog.Timeout))
	}
	a.Catalog = catalog.NewClient(catalogOpts...)

	genOpts := []generator.Option{
		generator.WithFs(o.fs),
		generator.WithImageTimeout(cfg.Catalog.ImageTimeout),
		generator.WithObserver(a.Metrics),
		generator.WithLogger(logger),
	}
	if o.httpClient != nil {
		genOpts = append(genOpts, generator.WithHTTPClient(o.httpClient))
	}
	if lib := newMediaHost(cfg.MediaHost, o.httpClient, logger); lib != nil {
		genOpts = append(genOpts, generator.WithMediaLibrary(lib))
	}
	a.Generator = generator.New(genOpts...)

	deps := tasks.Deps{
		Catalog:   a.Catalog,
		Generator: a.Generator,
		Runs:      a.Store,
		Events:    a.Bus,
		Observer:  a.Metrics,
		Logger:    logger,
	}
	all, fav := Targets(cfg)
	a.AllTask = tasks.NewAllTask(all, deps)
	a.FavoritesTask = tasks.NewFavoritesTask(fav, cfg.Catalog.Token, observedIndex{a.Favorites, a.Metrics}, a.Store, deps)
	a.Titles = tasks.NewTitleSyncer(all, fav, a.Favorites, deps)

	return a, nil
}

func newMediaHost(cfg config.MediaHostConfig, hc *http.Client, logger *slog.Logger) generator.MediaLibrary {
	if cfg.URL == "" {
		return nil
	}
	opts := []mediahost.Option{
		mediahost.WithPathMapping(cfg.LocalPath, cfg.RemotePath),
		mediahost.WithLogger(logger),
	}
	if hc != nil {
		opts = append(opts, mediahost.WithHTTPClient(hc))
	}
	return mediahost.New(cfg.URL, cfg.APIKey, opts...)
}

// Targets converts the configured targets.
func Targets(cfg *config.Config) (all, fav tasks.Target) {
	convert := func(name string, t config.TargetConfig) tasks.Target {
		return tasks.Target{
			Name:     name,
			BasePath: t.Path,
			Quality:  cfg.Generator.Quality,
			Enabled:  t.Enabled,
			PageSize: t.PageSize,
			MaxPages: t.MaxPages,
		}
	}
	return convert(tasks.NameAll, cfg.Targets.All), convert(tasks.NameFavorites, cfg.Targets.Favorites)
}

// observedIndex keeps the favorites gauge in step with the index.
type observedIndex struct {
	*favorites.Index
	m *metrics.Metrics
}

func (i observedIndex) Update(ids []int) {
	i.Index.Update(ids)
	i.m.SetFavorites(i.Index.Len())
}

// Watcher returns the push-channel watcher, creating it on first use.
func (a *App) Watcher() *watcher.Watcher {
	if a.watcher == nil {
		w := a.Config.Watcher
		a.watcher = watcher.New(watcher.Config{
			Enabled: w.Enabled,
			URL:     w.URL,
			Backoff: backoff.Policy{Base: w.BaseDelay, Max: w.MaxDelay, Jitter: w.Jitter},
		}, a.Bus, a.logger, watcher.WithObserver(a.Metrics))
	}
	return a.watcher
}

// Regenerator returns a handler regenerating titles reported by the watcher.
func (a *App) Regenerator() *handlers.Regenerator {
	return handlers.NewRegenerator(a.Bus, a.Titles, a.logger,
		handlers.WithQueueSize(a.Config.Watcher.QueueSize),
		handlers.WithWorkers(a.Config.Watcher.Workers),
		handlers.WithRegenerationObserver(a.Metrics),
	)
}

// Jobs returns the scheduled jobs: both sync tasks and event log pruning.
func (a *App) Jobs() []server.Job {
	return []server.Job{
		{
			Name:     tasks.NameAll,
			Schedule: a.Config.Targets.All.Schedule,
			Run:      func(ctx context.Context) { a.AllTask.Run(ctx, nil) },
		},
		{
			Name:     tasks.NameFavorites,
			Schedule: a.Config.Targets.Favorites.Schedule,
			Run:      func(ctx context.Context) { a.FavoritesTask.Run(ctx, nil) },
		},
		{
			Name:     "prune-events",
			Schedule: "@daily",
			Run:      a.pruneEvents,
		},
	}
}

func (a *App) pruneEvents(ctx context.Context) {
	n, err := a.EventLog.Prune(ctx, a.Config.Database.EventRetention)
	if err != nil {
		a.logger.Error("failed to prune event log", "error", err)
		return
	}
	a.logger.Info("pruned event log", "removed", n)
}

// Runner builds the daemon runner. The watcher and regenerator only run when
// the watcher is enabled.
func (a *App) Runner() *server.Runner {
	opts := []server.Option{
		server.WithJobs(a.Jobs()...),
		server.WithMetrics(a.Metrics.Handler()),
		server.WithHealthCheck(a.health),
	}
	if a.Config.Watcher.Enabled {
		opts = append(opts, server.WithHandlers(a.Watcher(), a.Regenerator()))
	}
	return server.NewRunner(server.Config{MetricsAddr: a.Config.Server.MetricsAddr}, a.logger, opts...)
}

var errWatcherStopped = errors.New("watcher stopped")

func (a *App) health() error {
	if err := a.DB.Ping(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Config.Watcher.Enabled && a.watcher != nil && a.watcher.State() == watcher.StateStopped {
		return errWatcherStopped
	}
	return nil
}

// Close releases the bus and the database.
func (a *App) Close() error {
	return errors.Join(a.Bus.Close(), a.DB.Close())
}
