package catalog

import (
	"github.com/samber/lo"

	"github.com/vmunix/anistrm/pkg/naming"
)

// MatchResult is a title ranked against a search query.
type MatchResult struct {
	Title Title
	Name  string  // the alias that matched
	Score float64 // Jaro-Winkler similarity, 0.0-1.0
}

// Match ranks titles by fuzzy similarity of any of their names to query and
// returns at most limit results, best first.
func Match(query string, titles []Title, limit int) []MatchResult {
	candidates := lo.Map(titles, func(t Title, i int) naming.Candidate {
		return naming.Candidate{
			Key:   i,
			Names: lo.Compact([]string{t.Names.Ru, t.Names.En, t.Names.Alternative, t.Code}),
		}
	})

	return lo.Map(naming.Rank(query, candidates, limit), func(r naming.Ranked, _ int) MatchResult {
		return MatchResult{Title: titles[r.Key], Name: r.Name, Score: r.Score}
	})
}

// IDs projects titles to their ids.
func IDs(titles []Title) []int {
	return lo.Map(titles, func(t Title, _ int) int { return t.ID })
}
