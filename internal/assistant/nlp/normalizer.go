package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spacePattern = regexp.MustCompile(`\s+`)

	// NFD decomposition followed by combining-mark removal strips accents
	// ("Yaoundé" -> "yaounde").
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize lower-cases, strips diacritics and punctuation, and collapses
// whitespace. The result contains only letters, digits and single spaces,
// which makes Normalize idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	stripped, _, err := transform.String(deaccent, lowered)
	if err != nil {
		stripped = lowered
	}

	stripped = punctPattern.ReplaceAllString(stripped, " ")
	stripped = spacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

// Tokenize normalizes and splits into words
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
