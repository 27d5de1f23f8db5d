// Package favorites tracks which titles belong to the user's favorites.
package favorites

import (
	"sort"
	"sync"
)

// Index is a concurrency-safe set of favorite title ids. It is replaced
// wholesale by each favorites sync and read by the realtime regenerator.
type Index struct {
	mu  sync.RWMutex
	ids map[int]struct{}
}

// New creates an empty index.
func New() *Index {
	return &Index{ids: map[int]struct{}{}}
}

// Update replaces the whole set with ids.
func (i *Index) Update(ids []int) {
	next := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}

	i.mu.Lock()
	i.ids = next
	i.mu.Unlock()
}

// IsMember reports whether id is a favorite.
func (i *Index) IsMember(id int) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.ids[id]
	return ok
}

// Len returns the number of favorites.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

// Snapshot returns the favorite ids in ascending order.
func (i *Index) Snapshot() []int {
	i.mu.RLock()
	out := make([]int, 0, len(i.ids))
	for id := range i.ids {
		out = append(out, id)
	}
	i.mu.RUnlock()

	sort.Ints(out)
	return out
}
