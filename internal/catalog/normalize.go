package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so "São Paulo" and "Sao Paulo"
// normalize to the same key.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeKey lowercases, removes diacritics, and collapses punctuation and
// whitespace runs into single spaces. Catalog lookups compare these keys.
func normalizeKey(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenSet splits a normalized key into its word set.
func tokenSet(key string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(key) {
		set[tok] = struct{}{}
	}
	return set
}

// keySimilarity computes Jaccard similarity on normalized word sets. Used
// for fuzzy catalog lookups ("Bali" vs "Bali, Indonesia").
func keySimilarity(a, b string) float64 {
	sa := tokenSet(normalizeKey(a))
	sb := tokenSet(normalizeKey(b))
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	intersection := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
