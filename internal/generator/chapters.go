package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

//go:generate mockgen -destination=mocks/mock_media_library.go -package=mocks . MediaLibrary

// MediaLibrary is the host media library that indexes generated pointer
// files. It is used to attach chapter marks to episodes.
type MediaLibrary interface {
	// FindItemByPath returns the library item id for a pointer file path,
	// or ErrItemNotFound when the library has not indexed it yet.
	FindItemByPath(ctx context.Context, path string) (string, error)

	// GetChapters returns the chapter marks currently stored for an item.
	GetChapters(ctx context.Context, itemID string) ([]Chapter, error)

	// SaveChapters replaces the chapter marks of an item.
	SaveChapters(ctx context.Context, itemID string, chapters []Chapter) error
}

// Chapter is a named position inside an episode.
type Chapter struct {
	Name  string        `json:"name"`
	Start time.Duration `json:"start"`
}

// Chapter names.
const (
	ChapterIntro   = "Intro"
	ChapterEpisode = "Episode"
)

// IntroChapters builds the chapter list for an opening interval: Intro at
// its start and, when the interval is non-empty, Episode at its end.
func IntroChapters(start, end int) []Chapter {
	chapters := []Chapter{{Name: ChapterIntro, Start: time.Duration(start) * time.Second}}
	if end > start {
		chapters = append(chapters, Chapter{Name: ChapterEpisode, Start: time.Duration(end) * time.Second})
	}
	return chapters
}

func chaptersEqual(a, b []Chapter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// syncChapters writes want to the library item at path unless it already
// carries exactly those chapters. It reports whether a write happened.
func syncChapters(ctx context.Context, lib MediaLibrary, path string, want []Chapter) (bool, error) {
	itemID, err := lib.FindItemByPath(ctx, path)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return false, err
		}
		return false, fmt.Errorf("find item: %w", err)
	}

	existing, err := lib.GetChapters(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("get chapters: %w", err)
	}
	if chaptersEqual(existing, want) {
		return false, nil
	}

	if err := lib.SaveChapters(ctx, itemID, want); err != nil {
		return false, fmt.Errorf("save chapters: %w", err)
	}
	return true, nil
}
