// Package generator writes the .strm library tree for catalog titles.
//
// Every artifact is create-if-absent: a second run over the same input
// writes nothing, and files edited by hand are never overwritten.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"github.com/vmunix/anistrm/internal/catalog"
)

const defaultImageTimeout = 15 * time.Second

// Artifact names a kind of generated file for observers.
type Artifact string

const (
	ArtifactPointer  Artifact = "strm"
	ArtifactNFO      Artifact = "nfo"
	ArtifactEDL      Artifact = "edl"
	ArtifactImage    Artifact = "image"
	ArtifactChapters Artifact = "chapters"
)

// Outcome is what happened to one artifact.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeExists  Outcome = "exists"
	OutcomeFailed  Outcome = "failed"
)

// Observer is notified of every artifact outcome, typically metrics.
type Observer interface {
	ObserveArtifact(kind Artifact, outcome Outcome)
}

// Result counts what a generation pass did.
type Result struct {
	Titles        int // titles generated
	SkippedTitles int // titles without episodes
	Written       int
	Existing      int
	Failed        int
}

func (r *Result) add(o Result) {
	r.Titles += o.Titles
	r.SkippedTitles += o.SkippedTitles
	r.Written += o.Written
	r.Existing += o.Existing
	r.Failed += o.Failed
}

// Generator maps titles to files.
type Generator struct {
	fs           afero.Fs
	httpClient   *http.Client
	imageTimeout time.Duration
	library      MediaLibrary // nil if not configured
	observer     Observer
	log          *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithFs sets the filesystem (for testing).
func WithFs(fs afero.Fs) Option {
	return func(g *Generator) {
		g.fs = fs
	}
}

// WithHTTPClient sets the client used for image downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Generator) {
		g.httpClient = hc
	}
}

// WithImageTimeout bounds each image download.
func WithImageTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.imageTimeout = d
		}
	}
}

// WithMediaLibrary enables chapter marks through lib.
func WithMediaLibrary(lib MediaLibrary) Option {
	return func(g *Generator) {
		g.library = lib
	}
}

// WithObserver registers an artifact observer.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		g.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// New creates a generator writing to the OS filesystem by default.
func New(opts ...Option) *Generator {
	g := &Generator{
		fs:           afero.NewOsFs(),
		httpClient:   &http.Client{},
		imageTimeout: defaultImageTimeout,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	g.log = g.log.With("component", "generator")
	return g
}

// GenerateTitles generates every title in order under basePath and reports
// progress once per title. Failures of single artifacts are logged and
// skipped; only context cancellation is returned. Nothing already written
// is rolled back.
func (g *Generator) GenerateTitles(ctx context.Context, titles []catalog.Title, basePath, quality string, progress func(done, total int)) error {
	total := len(titles)
	var sum Result
	start := time.Now()

	for i, t := range titles {
		res, err := g.GenerateTitle(ctx, t, basePath, quality)
		sum.add(res)
		if err != nil {
			g.log.Info("generation canceled", "done", i, "total", total)
			return err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	g.log.Info("generation complete",
		"base", basePath,
		"titles", sum.Titles,
		"skipped_titles", sum.SkippedTitles,
		"written", sum.Written,
		"existing", sum.Existing,
		"failed", sum.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// GenerateTitle generates the artifacts of a single title. Only context
// errors are returned.
func (g *Generator) GenerateTitle(ctx context.Context, t catalog.Title, basePath, quality string) (Result, error) {
	r := &titleRun{g: g, log: g.log.With("title_id", t.ID)}
	if err := ctx.Err(); err != nil {
		return r.res, err
	}

	if !t.HasEpisodes() {
		r.log.Info("skipping title without episodes", "code", t.Code)
		r.res.SkippedTitles++
		return r.res, nil
	}

	p := PathsFor(basePath, t)
	if err := g.fs.MkdirAll(p.Season, 0o755); err != nil {
		r.log.Warn("create season directory failed", "path", p.Season, "error", err)
		r.res.Failed++
		return r.res, nil
	}

	if t.Poster != "" {
		r.image(ctx, t.Poster, p.PosterStem())
	}
	r.render(p.ShowNFO(), func() ([]byte, error) { return renderShowNFO(t) })
	r.render(p.SeasonNFO(), func() ([]byte, error) { return renderSeasonNFO(t) })

	last := t.LastEpisodeNumber()
	for n := 1; n <= last; n++ {
		if err := ctx.Err(); err != nil {
			return r.res, err
		}
		ep, ok := t.Player.Episodes[n]
		if !ok {
			continue
		}
		r.episode(ctx, t, p, n, ep, quality)
	}

	r.res.Titles++
	r.log.Debug("title generated", "path", p.Show, "episodes", last)
	return r.res, nil
}

// titleRun carries per-title logging and counters.
type titleRun struct {
	g   *Generator
	log *slog.Logger
	res Result
}

func (r *titleRun) record(kind Artifact, outcome Outcome) {
	switch outcome {
	case OutcomeWritten:
		r.res.Written++
	case OutcomeExists:
		r.res.Existing++
	case OutcomeFailed:
		r.res.Failed++
	}
	if r.g.observer != nil {
		r.g.observer.ObserveArtifact(kind, outcome)
	}
}

func (r *titleRun) episode(ctx context.Context, t catalog.Title, p Paths, n int, ep catalog.Episode, quality string) {
	link, ok := ChooseVariant(ep.Variants, quality)
	if !ok {
		r.log.Debug("episode has no stream", "episode", n, "error", ErrNoVariant)
		return
	}
	url, ok := StreamURL(t.Player.Host, link)
	if !ok {
		r.log.Debug("episode stream has no host", "episode", n, "link", link)
		return
	}

	pointer := p.Pointer(n)
	r.write(ArtifactPointer, pointer, []byte(url))
	r.render(p.EpisodeNFO(n), func() ([]byte, error) { return renderEpisodeNFO(t, ep, n) })

	if ep.Preview != "" {
		r.image(ctx, ep.Preview, p.ThumbStem(n))
	}

	if len(ep.Opening) < 2 {
		return
	}
	start, end := ep.Opening[0], ep.Opening[1]
	r.write(ArtifactEDL, p.EDL(n), fmt.Appendf(nil, "%d %d 0\n", start, end))

	if r.g.library == nil {
		return
	}
	saved, err := syncChapters(ctx, r.g.library, pointer, IntroChapters(start, end))
	switch {
	case err != nil:
		r.log.Warn("unable to set intro chapter", "path", pointer, "error", err)
		r.record(ArtifactChapters, OutcomeFailed)
	case saved:
		r.record(ArtifactChapters, OutcomeWritten)
	default:
		r.record(ArtifactChapters, OutcomeExists)
	}
}

func (r *titleRun) write(kind Artifact, path string, data []byte) {
	written, err := writeIfAbsent(r.g.fs, path, data)
	switch {
	case err != nil:
		r.log.Warn("write failed", "path", path, "error", err)
		r.record(kind, OutcomeFailed)
	case written:
		r.record(kind, OutcomeWritten)
	default:
		r.record(kind, OutcomeExists)
	}
}

// render builds a descriptor only when its file is missing.
func (r *titleRun) render(path string, build func() ([]byte, error)) {
	if exists(r.g.fs, path) {
		r.record(ArtifactNFO, OutcomeExists)
		return
	}
	data, err := build()
	if err != nil {
		r.log.Warn("render descriptor failed", "path", path, "error", err)
		r.record(ArtifactNFO, OutcomeFailed)
		return
	}
	r.write(ArtifactNFO, path, data)
}

// image downloads url to stem.<ext> unless any stem.* file exists.
func (r *titleRun) image(ctx context.Context, url, stem string) {
	if existsWithStem(r.g.fs, stem) {
		r.record(ArtifactImage, OutcomeExists)
		return
	}
	data, ext, err := r.g.fetchImage(ctx, url)
	if err != nil {
		r.log.Debug("image download failed", "url", url, "error", err)
		r.record(ArtifactImage, OutcomeFailed)
		return
	}
	r.write(ArtifactImage, stem+ext, data)
}
