package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Catalogs and customer messages mix accented and unaccented spellings
// ("jamón" vs "jamon"), so all similarity scoring runs on folded text.
var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritical marks.
func Fold(s string) string {
	lowered := strings.ToLower(s)
	folded, _, err := transform.String(foldChain, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

// LikePattern turns free text into a case-insensitive SQL LIKE pattern:
// internal whitespace collapses into wildcards, so "jamon fud" matches
// "Jamón de Pavo Fud 250g" via ILIKE '%jamon%fud%'.
func LikePattern(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return "%" + strings.Join(fields, "%") + "%"
}

// Similarity scores how close a customer's free-text reference is to a
// catalog name, on [0, 1]. It takes the better of a whole-string comparison
// and a per-token alignment: the token score forgives names that carry extra
// words ("jamo pavo" vs "Jamón de Pavo 250g"), the whole-string score covers
// single-word typos.
func Similarity(query, candidate string) float64 {
	q, c := Fold(query), Fold(candidate)

	whole := LevenshteinNormalized(stripSpaces(q), stripSpaces(c))

	qTokens := strings.Fields(q)
	cTokens := strings.Fields(c)
	if len(qTokens) == 0 || len(cTokens) == 0 {
		return whole
	}

	var sum float64
	for _, qt := range qTokens {
		best := 0.0
		for _, ct := range cTokens {
			if s := LevenshteinNormalized(qt, ct); s > best {
				best = s
			}
		}
		sum += best
	}
	token := sum / float64(len(qTokens))

	return max(whole, token)
}

func stripSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
