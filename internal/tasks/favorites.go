package tasks

import (
	"context"
	"log/slog"

	"github.com/vmunix/anistrm/internal/catalog"
)

// FavoritesIndex is updated with the ids fetched by a favorites run.
type FavoritesIndex interface {
	Update(ids []int)
}

// FavoritesStore persists the favorites set across restarts.
type FavoritesStore interface {
	SaveFavorites(ctx context.Context, ids []int) error
}

// FavoritesTask mirrors the user's favorites into the `favorites` target and
// refreshes the favorites index.
type FavoritesTask struct {
	target Target
	token  string
	index  FavoritesIndex
	saved  FavoritesStore
	deps   Deps
}

// NewFavoritesTask creates the favorites task. saved may be nil.
func NewFavoritesTask(target Target, token string, index FavoritesIndex, saved FavoritesStore, deps Deps) *FavoritesTask {
	return &FavoritesTask{target: target, token: token, index: index, saved: saved, deps: deps}
}

// Name returns the task key.
func (t *FavoritesTask) Name() string { return NameFavorites }

// Run fetches favorites, generates them, then replaces the index.
func (t *FavoritesTask) Run(ctx context.Context, progress func(done, total int)) Report {
	return t.deps.execute(ctx, NameFavorites, func(ctx context.Context, log *slog.Logger) (int, error) {
		if !t.target.Enabled {
			return skip(log, "target disabled")
		}
		if t.target.BasePath == "" {
			return skip(log, "no output path configured")
		}
		if t.token == "" {
			log.Warn("no catalog token configured")
			return skip(log, "no token")
		}

		log.Info("fetching favorites", "page_size", t.target.PageSize, "max_pages", t.target.MaxPages)
		titles := t.deps.Catalog.FetchFavorites(ctx, t.token, t.target.PageSize, t.target.MaxPages)
		log.Info("favorites fetched", "titles", len(titles))

		if err := t.deps.Generator.GenerateTitles(ctx, titles, t.target.BasePath, t.target.Quality, progress); err != nil {
			return len(titles), err
		}

		ids := catalog.IDs(titles)
		t.index.Update(ids)
		if t.saved != nil {
			if err := t.saved.SaveFavorites(context.WithoutCancel(ctx), ids); err != nil {
				log.Warn("failed to persist favorites", "error", err)
			}
		}
		return len(titles), nil
	})
}
