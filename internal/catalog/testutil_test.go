package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/vmunix/anistrm/internal/backoff"
)

// titleJSON builds a minimal wire title.
func titleJSON(id int) map[string]any {
	return map[string]any{
		"id":   id,
		"code": fmt.Sprintf("title-%d", id),
		"names": map[string]any{
			"ru": fmt.Sprintf("Тайтл %d", id),
			"en": fmt.Sprintf("Title %d", id),
		},
	}
}

// pagedServer serves total titles in pages of the requested size and
// records every page requested.
type pagedServer struct {
	*httptest.Server

	mu    sync.Mutex
	pages []int
	auth  []string
}

func newPagedServer(t *testing.T, total int, sizeParam string) *pagedServer {
	t.Helper()
	ps := &pagedServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get(sizeParam))

		ps.mu.Lock()
		ps.pages = append(ps.pages, page)
		ps.auth = append(ps.auth, r.Header.Get("Authorization"))
		ps.mu.Unlock()

		list := []map[string]any{}
		for i := (page-1)*size + 1; i <= page*size && i <= total; i++ {
			list = append(list, titleJSON(i))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"list": list})
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pagedServer) requested() []int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]int(nil), ps.pages...)
}

func newTestClient(baseURL string, opts ...Option) *Client {
	opts = append([]Option{
		WithBaseURL(baseURL),
		WithRateLimit(0),
		WithRetryPolicy(backoff.Policy{Base: time.Millisecond, Max: 2 * time.Millisecond}),
	}, opts...)
	return NewClient(opts...)
}
