package generator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/anistrm/internal/catalog"
)

func TestShowName(t *testing.T) {
	tests := []struct {
		name  string
		title catalog.Title
		want  string
	}{
		{"english name", catalog.Title{ID: 1, Code: "c", Names: catalog.Names{En: "Overlord III"}}, "Overlord"},
		{"sanitized", catalog.Title{ID: 1, Names: catalog.Names{En: "Re:Zero 2nd Season"}}, "Re Zero"},
		{"falls back to code", catalog.Title{ID: 1, Code: "sousou-no-frieren"}, "sousou-no-frieren"},
		{"unusable english falls back to code", catalog.Title{ID: 1, Code: "code", Names: catalog.Names{En: "???"}}, "code"},
		{"falls back to id", catalog.Title{ID: 42}, "Title_42"},
		{"marker behind punctuation", catalog.Title{ID: 1, Names: catalog.Names{En: "Title II."}}, "Title"},
		{"marker behind illegal char", catalog.Title{ID: 1, Names: catalog.Names{En: "Dr. Stone 3?"}}, "Dr. Stone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShowName(tt.title))
		})
	}
}

func TestShowName_FixedPoint(t *testing.T) {
	names := []string{
		"Title II.",
		"Title II",
		"Overlord III:",
		"Re:Zero 2nd Season",
		"Made in Abyss - Movie.",
		"Season 2",
		"Show\tName Season 2",
		"e\x00\u0301 2",
	}
	for _, n := range names {
		once := ShowName(catalog.Title{ID: 1, Names: catalog.Names{En: n}})
		again := ShowName(catalog.Title{ID: 1, Names: catalog.Names{En: once}})
		assert.Equal(t, once, again, "ShowName not stable for %q", n)
	}
	assert.Equal(t,
		ShowName(catalog.Title{ID: 1, Names: catalog.Names{En: "Title II."}}),
		ShowName(catalog.Title{ID: 2, Names: catalog.Names{En: "Title II"}}))
}

func TestPathsFor(t *testing.T) {
	title := catalog.Title{
		ID:         9555,
		Names:      catalog.Names{En: "The Apothecary Diaries Season 2"},
		Franchises: []catalog.Franchise{{Releases: []catalog.Release{{ID: 9555, Ordinal: 2}}}},
	}
	p := PathsFor("/lib", title)

	show := filepath.Join("/lib", "The Apothecary Diaries")
	season := filepath.Join(show, "Season 2")
	assert.Equal(t, show, p.Show)
	assert.Equal(t, season, p.Season)
	assert.Equal(t, filepath.Join(show, "tvshow.nfo"), p.ShowNFO())
	assert.Equal(t, filepath.Join(season, "season.nfo"), p.SeasonNFO())
	assert.Equal(t, filepath.Join(season, "S02E03.strm"), p.Pointer(3))
	assert.Equal(t, filepath.Join(season, "S02E03.nfo"), p.EpisodeNFO(3))
	assert.Equal(t, filepath.Join(season, "S02E03.edl"), p.EDL(3))
	assert.Equal(t, filepath.Join(season, "S02E03-thumb"), p.ThumbStem(3))
	assert.Equal(t, filepath.Join(show, "folder"), p.PosterStem())
	assert.Equal(t, filepath.Join(season, "S02E112.strm"), p.Pointer(112))
}
