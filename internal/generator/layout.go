package generator

import (
	"fmt"
	"path/filepath"

	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/pkg/naming"
)

// File names inside a show directory.
const (
	posterBase    = "folder"
	showNFOName   = "tvshow.nfo"
	seasonNFOName = "season.nfo"
	thumbSuffix   = "-thumb"
)

// ShowName returns the directory name shared by every season of a title's
// franchise: the sanitized English name without season markers, else the
// code, else Title_<id>.
func ShowName(t catalog.Title) string {
	if name := showBase(t.Names.En); name != "" {
		return name
	}
	if name := naming.Sanitize(t.Code); name != "" {
		return name
	}
	return fmt.Sprintf("Title_%d", t.ID)
}

// showBase sanitizes and strips markers until neither changes the name, so
// punctuation hiding a marker ("Title II.") cannot split a franchise.
func showBase(name string) string {
	name = naming.Sanitize(name)
	for name != "" {
		next := naming.Sanitize(naming.StripSuffix(name))
		if next == name || next == "" {
			break
		}
		name = next
	}
	return name
}

// SeasonDir returns the season directory name.
func SeasonDir(season int) string {
	return fmt.Sprintf("Season %d", season)
}

// EpisodeBase returns the file stem shared by an episode's artifacts.
func EpisodeBase(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}

// Paths locates every artifact of one title under a base directory.
type Paths struct {
	Show   string
	Season string
	season int
}

// PathsFor computes the artifact directories of t under base.
func PathsFor(base string, t catalog.Title) Paths {
	show := filepath.Join(base, ShowName(t))
	season := t.SeasonNumber()
	return Paths{
		Show:   show,
		Season: filepath.Join(show, SeasonDir(season)),
		season: season,
	}
}

// ShowNFO is the show descriptor path.
func (p Paths) ShowNFO() string { return filepath.Join(p.Show, showNFOName) }

// SeasonNFO is the season descriptor path.
func (p Paths) SeasonNFO() string { return filepath.Join(p.Season, seasonNFOName) }

// Pointer is the .strm path for an episode.
func (p Paths) Pointer(ep int) string { return p.episodeFile(ep, ".strm") }

// EpisodeNFO is the descriptor path for an episode.
func (p Paths) EpisodeNFO(ep int) string { return p.episodeFile(ep, ".nfo") }

// EDL is the skip-interval path for an episode.
func (p Paths) EDL(ep int) string { return p.episodeFile(ep, ".edl") }

// ThumbStem is the thumbnail path without extension.
func (p Paths) ThumbStem(ep int) string { return p.episodeFile(ep, thumbSuffix) }

// PosterStem is the show poster path without extension.
func (p Paths) PosterStem() string { return filepath.Join(p.Show, posterBase) }

func (p Paths) episodeFile(ep int, suffix string) string {
	return filepath.Join(p.Season, EpisodeBase(p.season, ep)+suffix)
}
