// Package naming derives stable filesystem names from catalog titles.
package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// illegalChars are characters not allowed in filenames on common filesystems.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// whitespaceControls become spaces so words stay apart; other control
// characters are removed outright.
var (
	whitespaceControls = regexp.MustCompile(`[\t\n\v\f\r]`)
	controlChars       = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

var (
	multiSpace      = regexp.MustCompile(`\s+`)
	multiDot        = regexp.MustCompile(`\.{2,}`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
	multiDash       = regexp.MustCompile(`-{2,}`)
)

// Sanitize makes name safe for use as a single path element.
// The result is NFC-normalized and Sanitize(Sanitize(x)) == Sanitize(x).
// An empty result means nothing usable was left.
func Sanitize(name string) string {
	name = whitespaceControls.ReplaceAllString(name, " ")
	name = controlChars.ReplaceAllString(name, "")

	// Normalize after removing controls so a removed character cannot leave
	// a base letter and its combining mark uncomposed.
	name = norm.NFC.String(name)

	// Path separators are part of illegalChars, so traversal segments collapse
	// into plain dots and spaces below.
	name = illegalChars.ReplaceAllString(name, " ")

	name = multiSpace.ReplaceAllString(name, " ")
	name = multiDot.ReplaceAllString(name, ".")
	name = multiUnderscore.ReplaceAllString(name, "_")
	name = multiDash.ReplaceAllString(name, "-")

	return strings.Trim(name, " .")
}
