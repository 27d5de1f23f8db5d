package naming

import (
	"regexp"
	"strings"
)

// suffixRule strips one kind of trailing marker. Pattern must capture the
// remaining title in group 1.
type suffixRule struct {
	name    string
	pattern *regexp.Regexp
}

// sep is the punctuation allowed between a title and its trailing marker.
const sep = `[\s:,._\-–—]+`

// suffixRules are tried in order; the first match wins for each pass.
var suffixRules = []suffixRule{
	{"season", regexp.MustCompile(`(?i)^(.*\S)` + sep + `(?:season|part|cour)\s*\d+$`)},
	{"ordinal", regexp.MustCompile(`(?i)^(.*\S)` + sep +
		`(?:\d+(?:st|nd|rd|th)|first|second|third|fourth|fifth|final)\s+(?:season|part|cour)$`)},
	{"roman", regexp.MustCompile(`^(.*\S)\s+(?:II|III|IV)$`)},
	{"digit", regexp.MustCompile(`^(.*\S)\s+[2-4]$`)},
	{"special", regexp.MustCompile(`(?i)^(.*\S)` + sep + `(?:OVA|OAD|Specials?|Movie)$`)},
}

// markerOnly matches what is left of a name that was nothing but a marker,
// e.g. "Season" from "Season 2".
var markerOnly = regexp.MustCompile(`(?i)^(?:season|part|cour)$`)

// trimSet is removed from both ends after a marker is stripped.
const trimSet = " \t:,._-–—"

// StripSuffix removes trailing season, part, cour, sequel and special markers so
// that every release of a franchise maps to the same show name.
// StripSuffix(StripSuffix(x)) == StripSuffix(x).
func StripSuffix(title string) string {
	s := strings.TrimSpace(title)
	for {
		next, ok := stripOnce(s)
		if !ok {
			return s
		}
		s = next
	}
}

func stripOnce(s string) (string, bool) {
	for _, r := range suffixRules {
		m := r.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		rest := strings.Trim(m[1], trimSet)
		if rest == "" || markerOnly.MatchString(rest) {
			continue
		}
		return rest, true
	}
	return s, false
}
