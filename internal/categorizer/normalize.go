package categorizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, folds accents, removes punctuation and symbols and
// collapses whitespace. "WAL-MART #12" becomes "walmart 12".
func Normalize(s string) string {
	var b strings.Builder
	folded := fold(s)
	b.Grow(len(folded))
	for _, r := range folded {
		if isPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// fold lowercases s, folds accents and collapses whitespace but keeps
// punctuation, for keywords such as "t&t" that only mean something literally.
func fold(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func hasPunct(s string) bool {
	return strings.IndexFunc(s, isPunct) >= 0
}
