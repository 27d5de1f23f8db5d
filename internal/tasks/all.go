package tasks

import (
	"context"
	"log/slog"
)

// AllTask mirrors the full catalog into the `all` target.
type AllTask struct {
	target Target
	deps   Deps
}

// NewAllTask creates the full catalog task.
func NewAllTask(target Target, deps Deps) *AllTask {
	return &AllTask{target: target, deps: deps}
}

// Name returns the task key.
func (t *AllTask) Name() string { return NameAll }

// Run fetches every catalog page and generates the tree. progress may be nil.
func (t *AllTask) Run(ctx context.Context, progress func(done, total int)) Report {
	return t.deps.execute(ctx, NameAll, func(ctx context.Context, log *slog.Logger) (int, error) {
		if !t.target.Enabled {
			return skip(log, "target disabled")
		}
		if t.target.BasePath == "" {
			return skip(log, "no output path configured")
		}

		log.Info("fetching catalog", "page_size", t.target.PageSize, "max_pages", t.target.MaxPages)
		titles := t.deps.Catalog.FetchAllTitles(ctx, t.target.PageSize, t.target.MaxPages)
		log.Info("catalog fetched", "titles", len(titles))

		if err := t.deps.Generator.GenerateTitles(ctx, titles, t.target.BasePath, t.target.Quality, progress); err != nil {
			return len(titles), err
		}
		return len(titles), nil
	})
}
