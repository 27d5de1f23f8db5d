// Package server wires the long-running daemon components together.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/anistrm/internal/handlers"
)

const shutdownTimeout = 10 * time.Second

// Config for the daemon runner.
type Config struct {
	MetricsAddr string // empty disables the HTTP listener
}

// Runner manages the daemon components: bus handlers (watcher,
// regenerator), scheduled sync jobs and the metrics listener.
type Runner struct {
	config   Config
	handlers []handlers.Handler
	jobs     []Job
	metrics  http.Handler
	health   func() error
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandlers adds long-running handlers.
func WithHandlers(hs ...handlers.Handler) Option {
	return func(r *Runner) { r.handlers = append(r.handlers, hs...) }
}

// WithJobs adds scheduled jobs.
func WithJobs(jobs ...Job) Option {
	return func(r *Runner) { r.jobs = append(r.jobs, jobs...) }
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(r *Runner) { r.metrics = h }
}

// WithHealthCheck sets the check behind /healthz.
func WithHealthCheck(fn func() error) Option {
	return func(r *Runner) { r.health = fn }
}

// NewRunner creates a new runner.
func NewRunner(cfg Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts all components.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	sched := newScheduler(r.logger.With("component", "scheduler"))
	for _, job := range r.jobs {
		if err := sched.add(job); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if len(r.jobs) > 0 {
		g.Go(func() error { return sched.run(ctx) })
	}

	for _, h := range r.handlers {
		g.Go(func() error {
			r.logger.Info("starting handler", "handler", h.Name())
			err := h.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", h.Name(), err)
			}
			return nil
		})
	}

	if r.config.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              r.config.MetricsAddr,
			Handler:           r.mux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			r.logger.Info("metrics listener started", "addr", r.config.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	return g.Wait()
}

func (r *Runner) mux() http.Handler {
	mux := http.NewServeMux()
	if r.metrics != nil {
		mux.Handle("GET /metrics", r.metrics)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if r.health != nil {
			if err := r.health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
