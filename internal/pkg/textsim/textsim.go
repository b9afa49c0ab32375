package textsim

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultThreshold = 0.75

// Normalize trims s and collapses every whitespace run into a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize lowercases s, splits it on anything that is not a letter, digit or
// underscore and returns the set of tokens at least two runes long.
func Tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// TokenOverlap is |A∩B| / min(|A|, |B|), or 0 when either side has no tokens.
func TokenOverlap(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	if len(tb) < len(ta) {
		ta, tb = tb, ta
	}
	common := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			common++
		}
	}
	return float64(common) / float64(max(1, len(ta)))
}

// Scorer decides whether two questions are near duplicates.
type Scorer struct {
	threshold float64
}

func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Scorer{threshold: threshold}
}

func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// IsSimilar reports whether a and b are equal or contain one another after
// normalization, or share enough tokens. Blank strings are never similar.
func (s *Scorer) IsSimilar(a, b string) bool {
	na := strings.ToLower(Normalize(a))
	nb := strings.ToLower(Normalize(b))
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return TokenOverlap(na, nb) >= s.threshold
}

// IsSimilarToAny reports whether candidate collides with any of prior.
func (s *Scorer) IsSimilarToAny(candidate string, prior []string) bool {
	for _, p := range prior {
		if s.IsSimilar(candidate, p) {
			return true
		}
	}
	return false
}
