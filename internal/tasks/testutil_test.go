package tasks

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/internal/generator"
	"github.com/vmunix/anistrm/internal/migrations"
	"github.com/vmunix/anistrm/internal/store"
)

type fakeCatalog struct {
	all       []catalog.Title
	favorites []catalog.Title
	titles    map[int]catalog.Title
	tokens    []string
	panicOn   string
}

func (f *fakeCatalog) FetchAllTitles(context.Context, int, int) []catalog.Title {
	if f.panicOn == "all" {
		panic("decoder exploded")
	}
	return f.all
}

func (f *fakeCatalog) FetchFavorites(_ context.Context, token string, _, _ int) []catalog.Title {
	f.tokens = append(f.tokens, token)
	return f.favorites
}

func (f *fakeCatalog) FetchTitle(_ context.Context, id int) (*catalog.Title, error) {
	t, ok := f.titles[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &t, nil
}

type generateCall struct {
	ids      []int
	basePath string
	quality  string
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []generateCall
	err   error
}

func (f *fakeGenerator) GenerateTitles(_ context.Context, titles []catalog.Title, basePath, quality string, progress func(done, total int)) error {
	f.mu.Lock()
	f.calls = append(f.calls, generateCall{ids: catalog.IDs(titles), basePath: basePath, quality: quality})
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range titles {
		if progress != nil {
			progress(i+1, len(titles))
		}
	}
	return nil
}

func (f *fakeGenerator) GenerateTitle(_ context.Context, t catalog.Title, basePath, quality string) (generator.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, generateCall{ids: []int{t.ID}, basePath: basePath, quality: quality})
	f.mu.Unlock()
	if f.err != nil {
		return generator.Result{}, f.err
	}
	return generator.Result{Titles: 1, Written: 3}, nil
}

type recordingObserver struct {
	mu   sync.Mutex
	runs []string
}

func (o *recordingObserver) ObserveTaskRun(task, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, task+":"+status)
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(context.Background(), db))
	return store.New(db)
}

func titles(ids ...int) []catalog.Title {
	out := make([]catalog.Title, len(ids))
	for i, id := range ids {
		out[i] = catalog.Title{ID: id}
	}
	return out
}

var errBoom = errors.New("boom")
