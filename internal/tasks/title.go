package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Membership reports whether a title is in the user's favorites.
type Membership interface {
	IsMember(id int) bool
}

// TitleOutcome is the result of regenerating one title.
type TitleOutcome struct {
	Targets []string
	Written int
}

// TitleSyncer regenerates a single title into every applicable target.
type TitleSyncer struct {
	all       Target
	favorites Target
	members   Membership
	deps      Deps
}

// NewTitleSyncer creates a syncer. members may be nil, in which case the
// favorites target is never written.
func NewTitleSyncer(all, favorites Target, members Membership, deps Deps) *TitleSyncer {
	return &TitleSyncer{all: all, favorites: favorites, members: members, deps: deps}
}

// Sync fetches the title and generates it into the `all` target when
// enabled, and into `favorites` when enabled and the title is a favorite.
func (s *TitleSyncer) Sync(ctx context.Context, id int) (TitleOutcome, error) {
	log := s.deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return s.sync(ctx, id, log.With("component", "title_sync"))
}

func (s *TitleSyncer) sync(ctx context.Context, id int, log *slog.Logger) (TitleOutcome, error) {
	var out TitleOutcome

	t, err := s.deps.Catalog.FetchTitle(ctx, id)
	if err != nil {
		return out, fmt.Errorf("fetch title %d: %w", id, err)
	}

	for _, target := range s.targetsFor(id) {
		res, err := s.deps.Generator.GenerateTitle(ctx, *t, target.BasePath, target.Quality)
		if err != nil {
			return out, err
		}
		out.Targets = append(out.Targets, target.Name)
		out.Written += res.Written
		log.Info("title regenerated", "title_id", id, "target", target.Name,
			"written", res.Written, "existing", res.Existing, "failed", res.Failed)
	}
	if len(out.Targets) == 0 {
		log.Debug("no target applies", "title_id", id)
	}
	return out, nil
}

func (s *TitleSyncer) targetsFor(id int) []Target {
	var targets []Target
	if s.all.Enabled && s.all.BasePath != "" {
		targets = append(targets, s.all)
	}
	if s.favorites.Enabled && s.favorites.BasePath != "" && s.members != nil && s.members.IsMember(id) {
		targets = append(targets, s.favorites)
	}
	return targets
}

// Run regenerates one title as a recorded task run.
func (s *TitleSyncer) Run(ctx context.Context, id int) Report {
	return s.deps.execute(ctx, NameTitle, func(ctx context.Context, log *slog.Logger) (int, error) {
		out, err := s.sync(ctx, id, log)
		if err != nil {
			return 0, err
		}
		if len(out.Targets) == 0 {
			return skip(log, "no enabled target applies")
		}
		return 1, nil
	})
}
