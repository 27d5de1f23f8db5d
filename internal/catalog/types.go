package catalog

// Quality identifies one stream variant of an episode.
type Quality string

const (
	QualityFHD Quality = "fhd"
	QualityHD  Quality = "hd"
	QualitySD  Quality = "sd"
)

// Names holds the localized display names of a title.
type Names struct {
	Ru          string
	En          string
	Alternative string
}

// Release is one entry of a franchise: a title id with its position in the franchise.
type Release struct {
	ID      int
	Code    string
	Ordinal int
}

// Franchise groups releases that belong to the same show.
type Franchise struct {
	ID       string
	Name     string
	Releases []Release
}

// Episode is a single playable episode.
type Episode struct {
	Number  int
	Name    string
	Preview string // absolute URL, empty when absent
	// Opening and Ending are [start, end] in seconds when present.
	Opening  []int
	Ending   []int
	Variants map[Quality]string
}

// Player describes where and what can be streamed for a title.
type Player struct {
	Host         string
	FirstEpisode *int
	LastEpisode  *int
	// Episodes is keyed by episode number. Numbering may be sparse.
	Episodes map[int]Episode
}

// Title is one catalog entry. ID is the only stable identity across runs.
type Title struct {
	ID          int
	Code        string
	Names       Names
	Description string
	Poster      string // absolute URL, empty when absent
	Franchises  []Franchise
	Player      *Player
}

// SeasonNumber returns the franchise ordinal of the release matching this
// title, or 1 when the title is not part of a franchise.
func (t Title) SeasonNumber() int {
	for _, f := range t.Franchises {
		for _, r := range f.Releases {
			if r.ID == t.ID && r.Ordinal > 0 {
				return r.Ordinal
			}
		}
	}
	return 1
}

// HasEpisodes reports whether the title carries any playable episode.
func (t Title) HasEpisodes() bool {
	return t.Player != nil && len(t.Player.Episodes) > 0
}

// LastEpisodeNumber returns the last episode number advertised by the
// player, defaulting to 1.
func (t Title) LastEpisodeNumber() int {
	if t.Player == nil || t.Player.LastEpisode == nil || *t.Player.LastEpisode < 1 {
		return 1
	}
	return *t.Player.LastEpisode
}

// DisplayName returns the best human-readable name.
func (t Title) DisplayName() string {
	switch {
	case t.Names.Ru != "":
		return t.Names.Ru
	case t.Names.En != "":
		return t.Names.En
	default:
		return t.Code
	}
}
