package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeText lowercases, strips accents (NFD + remove combining marks) and
// collapses whitespace. Used for cache keys and heuristic keyword matching so
// "Rénover" and "renover" hit the same rules.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	stripped = strings.ToLower(strings.TrimSpace(stripped))
	return spaceRe.ReplaceAllString(stripped, " ")
}
