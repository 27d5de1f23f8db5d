package naming

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinScore is the lowest similarity Rank reports.
const MinScore = 0.70

// Candidate is one rankable entry. Names holds every alias of the entry; the
// best scoring alias decides the entry's score.
type Candidate struct {
	Key   int
	Names []string
}

// Ranked is a candidate with its similarity to the query.
type Ranked struct {
	Key   int
	Name  string
	Score float64
}

// Rank scores candidates against query with Jaro-Winkler similarity and
// returns at most limit entries scoring MinScore or better, best first.
// A limit <= 0 returns all of them.
func Rank(query string, candidates []Candidate, limit int) []Ranked {
	q := Fold(query)
	if q == "" {
		return nil
	}

	var out []Ranked
	for _, c := range candidates {
		best := Ranked{Key: c.Key}
		for _, name := range c.Names {
			n := Fold(name)
			if n == "" {
				continue
			}
			score := float64(edlib.JaroWinklerSimilarity(q, n))
			if strings.Contains(n, q) && score < 0.9 {
				score = 0.9
			}
			if score > best.Score {
				best.Score = score
				best.Name = name
			}
		}
		if best.Score >= MinScore {
			out = append(out, best)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Fold lowercases s, strips accents and punctuation and collapses whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, strings.ToLower(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
