// Package tasks implements the sync runs that mirror the catalog into the
// configured targets.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/internal/events"
	"github.com/vmunix/anistrm/internal/generator"
	"github.com/vmunix/anistrm/internal/store"
	"github.com/vmunix/anistrm/internal/tasklog"
)

// Task names. They double as run log keys.
const (
	NameAll       = "all"
	NameFavorites = "favorites"
	NameTitle     = "title"
)

// ErrSkipped marks a run that was not attempted because its target is
// disabled or not configured.
var ErrSkipped = errors.New("task skipped")

// Target is one generation destination.
type Target struct {
	Name     string
	BasePath string
	Quality  string
	Enabled  bool
	PageSize int
	MaxPages int
}

// Catalog is the subset of catalog.Client used by tasks.
type Catalog interface {
	FetchAllTitles(ctx context.Context, pageSize, maxPages int) []catalog.Title
	FetchFavorites(ctx context.Context, token string, pageSize, maxPages int) []catalog.Title
	FetchTitle(ctx context.Context, id int) (*catalog.Title, error)
}

// Generator is the subset of generator.Generator used by tasks.
type Generator interface {
	GenerateTitles(ctx context.Context, titles []catalog.Title, basePath, quality string, progress func(done, total int)) error
	GenerateTitle(ctx context.Context, t catalog.Title, basePath, quality string) (generator.Result, error)
}

// RunStore records task runs and their logs.
type RunStore interface {
	StartRun(ctx context.Context, task, runID string, startedAt time.Time) error
	AppendLog(ctx context.Context, runID, text string) error
	FinishRun(ctx context.Context, runID, status string, titles int, runErr string) error
}

// Publisher receives sync lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) bool
}

// Observer is notified when a run finishes.
type Observer interface {
	ObserveTaskRun(task, status string, elapsed time.Duration)
}

// Deps are the collaborators shared by every task. Runs, Events and Observer
// are optional.
type Deps struct {
	Catalog   Catalog
	Generator Generator
	Runs      RunStore
	Events    Publisher
	Observer  Observer
	Logger    *slog.Logger
}

// Report summarizes one run.
type Report struct {
	RunID  string
	Task   string
	Status string
	Titles int
	Err    error
}

type body func(ctx context.Context, log *slog.Logger) (titles int, err error)

// execute wraps a task body with run bookkeeping. It never panics and never
// returns an error; the outcome is in the report.
func (d Deps) execute(ctx context.Context, task string, fn body) (rep Report) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	rep = Report{RunID: runID, Task: task, Status: store.StatusRunning}

	// bookkeeping must outlive cancellation of the run itself
	bg := context.WithoutCancel(ctx)
	started := time.Now()

	persisted := false
	if d.Runs != nil {
		if err := d.Runs.StartRun(bg, task, runID, started); err != nil {
			logger.Error("failed to record run start", "task", task, "run_id", runID, "error", err)
		} else {
			persisted = true
		}
	}

	buf := tasklog.NewBuffer(tasklog.DefaultFlushLines, func(text string) error {
		if !persisted {
			return nil
		}
		return d.Runs.AppendLog(bg, runID, text)
	})
	log := tasklog.Logger(logger, buf, slog.LevelInfo).With("component", "task", "task", task, "run_id", runID)

	if d.Events != nil {
		d.Events.Publish(bg, events.NewSyncStarted(task, runID))
	}
	log.Info("task started")

	defer func() {
		if r := recover(); r != nil {
			rep.Err = fmt.Errorf("panic: %v", r)
		}
		switch {
		case errors.Is(rep.Err, ErrSkipped):
			rep.Status = store.StatusSkipped
		case rep.Err != nil:
			rep.Status = store.StatusFailed
			log.Error("task failed", "error", rep.Err)
		default:
			rep.Status = store.StatusSucceeded
		}
		elapsed := time.Since(started)
		log.Info("task done", "status", rep.Status, "titles", rep.Titles, "elapsed", elapsed.Round(time.Millisecond))

		if err := buf.Flush(); err != nil {
			logger.Error("failed to flush task log", "task", task, "run_id", runID, "error", err)
		}
		if persisted {
			errText := ""
			if rep.Err != nil {
				errText = rep.Err.Error()
			}
			if err := d.Runs.FinishRun(bg, runID, rep.Status, rep.Titles, errText); err != nil {
				logger.Error("failed to record run end", "task", task, "run_id", runID, "error", err)
			}
		}
		if d.Events != nil {
			var evErr error
			if rep.Status == store.StatusFailed {
				evErr = rep.Err
			}
			d.Events.Publish(bg, events.NewSyncCompleted(task, runID, rep.Titles, elapsed, evErr))
		}
		if d.Observer != nil {
			d.Observer.ObserveTaskRun(task, rep.Status, elapsed)
		}
	}()

	rep.Titles, rep.Err = fn(ctx, log)
	return rep
}

func skip(log *slog.Logger, reason string) (int, error) {
	log.Info("skipping", "reason", reason)
	return 0, fmt.Errorf("%w: %s", ErrSkipped, reason)
}

var _ RunStore = (*store.Store)(nil)
