package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/anistrm/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(context.Background(), db))
	return db
}

func TestStore_RunLifecycle(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	started := time.Now().Add(-time.Minute)

	require.NoError(t, s.StartRun(ctx, "all", "run-1", started))

	r, err := s.LastRun(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, r.Status)
	assert.Nil(t, r.FinishedAt)
	assert.Zero(t, r.Duration())

	require.NoError(t, s.AppendLog(ctx, "run-1", "line one\n"))
	require.NoError(t, s.AppendLog(ctx, "run-1", "line two\n"))
	require.NoError(t, s.AppendLog(ctx, "run-1", ""))
	require.NoError(t, s.FinishRun(ctx, "run-1", StatusSucceeded, 42, ""))

	r, err = s.LastRun(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, StatusSucceeded, r.Status)
	assert.Equal(t, 42, r.Titles)
	assert.Equal(t, "line one\nline two\n", r.Log)
	require.NotNil(t, r.FinishedAt)
	assert.Greater(t, r.Duration(), time.Duration(0))
}

func TestStore_UnknownRun(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, s.AppendLog(ctx, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, s.FinishRun(ctx, "missing", StatusFailed, 0, "boom"), ErrNotFound)

	_, err := s.LastRun(ctx, "favorites")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Runs(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.StartRun(ctx, "all", "a1", now))
	require.NoError(t, s.StartRun(ctx, "favorites", "f1", now))
	require.NoError(t, s.StartRun(ctx, "all", "a2", now))

	tests := []struct {
		name  string
		task  string
		limit int
		want  []string
	}{
		{"all tasks", "", 0, []string{"a2", "f1", "a1"}},
		{"one task", "all", 0, []string{"a2", "a1"}},
		{"limited", "", 2, []string{"a2", "f1"}},
		{"no runs", "title", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.Runs(ctx, tt.task, tt.limit)
			require.NoError(t, err)
			var got []string
			for _, r := range runs {
				got = append(got, r.RunID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	last, err := s.LastRun(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, "a2", last.RunID)
}

func TestStore_Favorites(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	ids, err := s.LoadFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.SaveFavorites(ctx, []int{9, 3, 3, 5}))
	ids, err = s.LoadFavorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5, 9}, ids)

	require.NoError(t, s.SaveFavorites(ctx, []int{7}))
	ids, err = s.LoadFavorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, ids, "save replaces the set")

	require.NoError(t, s.SaveFavorites(ctx, nil))
	ids, err = s.LoadFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
