package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// NormalizeOrigin reduces an origin url to the form used as the dedup
// key against the record store: no https scheme, no trailing slash.
// The store may hold the same link in either format depending on how
// the record was created, so matching happens on the reduced form.
func NormalizeOrigin(origin string) string {
	origin = strings.TrimPrefix(origin, "https://")
	origin = strings.TrimSuffix(origin, "/")
	return origin
}

// TruncateRunes cuts s down to at most max runes. Byte truncation
// would split multibyte titles in half.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
