package generator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/internal/generator"
	"github.com/vmunix/anistrm/internal/generator/mocks"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// imageServer serves a PNG for /ok/* and an HTML page for anything else.
func imageServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if filepath.Dir(r.URL.Path) == "/ok" {
			_, _ = w.Write(pngBytes)
			return
		}
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func intPtr(n int) *int { return &n }

func sampleTitle(media string) catalog.Title {
	return catalog.Title{
		ID:          9555,
		Code:        "kusuriya-no-hitorigoto",
		Names:       catalog.Names{Ru: "Монолог фармацевта", En: "The Apothecary Diaries Season 2"},
		Description: "Maomao & friends",
		Poster:      media + "/ok/poster",
		Franchises:  []catalog.Franchise{{Releases: []catalog.Release{{ID: 9000, Ordinal: 1}, {ID: 9555, Ordinal: 2}}}},
		Player: &catalog.Player{
			Host:        "cache.example",
			LastEpisode: intPtr(4),
			Episodes: map[int]catalog.Episode{
				1: {
					Number:   1,
					Name:     "Maomao",
					Preview:  media + "/ok/1",
					Opening:  []int{10, 100},
					Variants: map[catalog.Quality]string{catalog.QualityHD: "/v/1/720.m3u8", catalog.QualityFHD: "/v/1/1080.m3u8"},
				},
				2: {
					Number:   2,
					Preview:  media + "/bad/2",
					Variants: map[catalog.Quality]string{catalog.QualitySD: "/v/2/480.m3u8"},
				},
				// 3 is missing on purpose
				4: {Number: 4, Variants: map[catalog.Quality]string{}},
			},
		},
	}
}

func listFiles(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerator_GenerateTitles_Tree(t *testing.T) {
	media, _ := imageServer(t)
	fs := afero.NewMemMapFs()
	g := generator.New(generator.WithFs(fs), generator.WithLogger(testLogger()))

	var progress [][2]int
	err := g.GenerateTitles(context.Background(), []catalog.Title{sampleTitle(media.URL)}, "/lib", "1080",
		func(done, total int) { progress = append(progress, [2]int{done, total}) })
	require.NoError(t, err)

	assert.Equal(t, []string{
		"The Apothecary Diaries/Season 2/S02E01-thumb.png",
		"The Apothecary Diaries/Season 2/S02E01.edl",
		"The Apothecary Diaries/Season 2/S02E01.nfo",
		"The Apothecary Diaries/Season 2/S02E01.strm",
		"The Apothecary Diaries/Season 2/S02E02.nfo",
		"The Apothecary Diaries/Season 2/S02E02.strm",
		"The Apothecary Diaries/Season 2/season.nfo",
		"The Apothecary Diaries/folder.png",
		"The Apothecary Diaries/tvshow.nfo",
	}, listFiles(t, fs, "/lib"))

	season := "/lib/The Apothecary Diaries/Season 2"
	assert.Equal(t, "https://cache.example/v/1/1080.m3u8", readFile(t, fs, season+"/S02E01.strm"))
	assert.Equal(t, "https://cache.example/v/2/480.m3u8", readFile(t, fs, season+"/S02E02.strm"))
	assert.Equal(t, "10 100 0\n", readFile(t, fs, season+"/S02E01.edl"))
	assert.Contains(t, readFile(t, fs, "/lib/The Apothecary Diaries/tvshow.nfo"), "<plot>Maomao &amp; friends</plot>")
	assert.Equal(t, [][2]int{{1, 1}}, progress)
}

func TestGenerator_Idempotent(t *testing.T) {
	media, hits := imageServer(t)
	fs := afero.NewMemMapFs()
	g := generator.New(generator.WithFs(fs), generator.WithLogger(testLogger()))
	title := sampleTitle(media.URL)

	first, err := g.GenerateTitle(context.Background(), title, "/lib", "720")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Titles)
	assert.Positive(t, first.Written)
	before := listFiles(t, fs, "/lib")
	strm := readFile(t, fs, "/lib/The Apothecary Diaries/Season 2/S02E01.strm")
	hitsAfterFirst := hits.Load()

	// A different preference must not rewrite existing pointers.
	second, err := g.GenerateTitle(context.Background(), title, "/lib", "1080")
	require.NoError(t, err)
	assert.Zero(t, second.Written)
	assert.Equal(t, before, listFiles(t, fs, "/lib"))
	assert.Equal(t, strm, readFile(t, fs, "/lib/The Apothecary Diaries/Season 2/S02E01.strm"))

	// Only the invalid thumbnail is retried; stored images are not downloaded again.
	assert.Equal(t, hitsAfterFirst+1, hits.Load())
}

func TestGenerator_SkipsTitleWithoutEpisodes(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := generator.New(generator.WithFs(fs), generator.WithLogger(testLogger()))

	titles := []catalog.Title{
		{ID: 1, Names: catalog.Names{En: "Empty"}},
		{ID: 2, Names: catalog.Names{En: "No List"}, Player: &catalog.Player{Host: "h"}},
	}
	var calls int
	err := g.GenerateTitles(context.Background(), titles, "/lib", "720", func(done, total int) {
		calls++
		assert.Equal(t, calls, done)
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	ok, err := afero.DirExists(fs, "/lib/Empty")
	require.NoError(t, err)
	assert.False(t, ok, "skipped titles create no directory")
}

func TestGenerator_LastEpisodeDefaultsToOne(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := generator.New(generator.WithFs(fs), generator.WithLogger(testLogger()))

	title := catalog.Title{
		ID:    3,
		Code:  "short",
		Names: catalog.Names{En: "Short"},
		Player: &catalog.Player{Host: "h", Episodes: map[int]catalog.Episode{
			1: {Variants: map[catalog.Quality]string{catalog.QualityHD: "/1.m3u8"}},
			2: {Variants: map[catalog.Quality]string{catalog.QualityHD: "/2.m3u8"}},
		}},
	}
	_, err := g.GenerateTitle(context.Background(), title, "/lib", "720")
	require.NoError(t, err)

	files := listFiles(t, fs, "/lib")
	assert.Contains(t, files, "Short/Season 1/S01E01.strm")
	assert.NotContains(t, files, "Short/Season 1/S01E02.strm")
}

func TestGenerator_Canceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := generator.New(generator.WithFs(fs), generator.WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	progressed := false
	err := g.GenerateTitles(ctx, []catalog.Title{sampleTitle("http://127.0.0.1:1")}, "/lib", "720",
		func(int, int) { progressed = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, progressed)
}

func TestGenerator_Chapters(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *mocks.MockMediaLibrary)
		wantSave bool
	}{
		{
			name: "no existing chapters",
			setup: func(m *mocks.MockMediaLibrary) {
				m.EXPECT().FindItemByPath(gomock.Any(), gomock.Any()).Return("item-1", nil)
				m.EXPECT().GetChapters(gomock.Any(), "item-1").Return(nil, nil)
				m.EXPECT().SaveChapters(gomock.Any(), "item-1", []generator.Chapter{
					{Name: generator.ChapterIntro, Start: 10 * time.Second},
					{Name: generator.ChapterEpisode, Start: 100 * time.Second},
				}).Return(nil)
			},
			wantSave: true,
		},
		{
			name: "chapters already match",
			setup: func(m *mocks.MockMediaLibrary) {
				m.EXPECT().FindItemByPath(gomock.Any(), gomock.Any()).Return("item-1", nil)
				m.EXPECT().GetChapters(gomock.Any(), "item-1").Return(generator.IntroChapters(10, 100), nil)
			},
		},
		{
			name: "item not indexed yet",
			setup: func(m *mocks.MockMediaLibrary) {
				m.EXPECT().FindItemByPath(gomock.Any(), gomock.Any()).Return("", generator.ErrItemNotFound)
			},
		},
		{
			name: "save failure is not fatal",
			setup: func(m *mocks.MockMediaLibrary) {
				m.EXPECT().FindItemByPath(gomock.Any(), gomock.Any()).Return("item-1", nil)
				m.EXPECT().GetChapters(gomock.Any(), "item-1").Return([]generator.Chapter{{Name: "Intro"}}, nil)
				m.EXPECT().SaveChapters(gomock.Any(), "item-1", gomock.Any()).Return(errors.New("boom"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lib := mocks.NewMockMediaLibrary(ctrl)
			tt.setup(lib)

			fs := afero.NewMemMapFs()
			g := generator.New(generator.WithFs(fs), generator.WithMediaLibrary(lib), generator.WithLogger(testLogger()))

			title := catalog.Title{
				ID:    5,
				Names: catalog.Names{En: "Intro Show"},
				Player: &catalog.Player{Host: "h", Episodes: map[int]catalog.Episode{
					1: {Opening: []int{10, 100}, Variants: map[catalog.Quality]string{catalog.QualityHD: "/1.m3u8"}},
				}},
			}
			_, err := g.GenerateTitle(context.Background(), title, "/lib", "720")
			require.NoError(t, err)

			// the rest of the episode is generated regardless
			files := listFiles(t, fs, "/lib")
			assert.Contains(t, files, "Intro Show/Season 1/S01E01.strm")
			assert.Contains(t, files, "Intro Show/Season 1/S01E01.edl")
			assert.Contains(t, files, "Intro Show/Season 1/S01E01.nfo")
		})
	}
}

func TestIntroChapters(t *testing.T) {
	assert.Equal(t, []generator.Chapter{{Name: "Intro", Start: 5 * time.Second}}, generator.IntroChapters(5, 5))
	assert.Len(t, generator.IntroChapters(5, 90), 2)
}

type countingObserver struct {
	counts map[generator.Outcome]int
}

func (c *countingObserver) ObserveArtifact(_ generator.Artifact, o generator.Outcome) {
	c.counts[o]++
}

func TestGenerator_Observer(t *testing.T) {
	fs := afero.NewMemMapFs()
	obs := &countingObserver{counts: map[generator.Outcome]int{}}
	g := generator.New(generator.WithFs(fs), generator.WithObserver(obs), generator.WithLogger(testLogger()))

	title := catalog.Title{
		ID:    6,
		Names: catalog.Names{En: "Observed"},
		Player: &catalog.Player{Host: "h", Episodes: map[int]catalog.Episode{
			1: {Variants: map[catalog.Quality]string{catalog.QualityHD: "/1.m3u8"}},
		}},
	}
	res, err := g.GenerateTitle(context.Background(), title, "/lib", "720")
	require.NoError(t, err)

	// tvshow.nfo, season.nfo, S01E01.strm, S01E01.nfo
	assert.Equal(t, 4, res.Written)
	assert.Equal(t, 4, obs.counts[generator.OutcomeWritten])
}
