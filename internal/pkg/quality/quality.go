package quality

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/textsim"
)

type Profile string

const (
	ProfileLenient Profile = "lenient"
	ProfileStrict  Profile = "strict"
)

const (
	DefaultLenientMin = 10
	DefaultStrictMin  = 18

	denseLength    = 35
	minDenseSignal = 2
)

type Verdict string

const (
	VerdictAcceptable Verdict = "acceptable"
	VerdictTooShort   Verdict = "too_short"
	VerdictConfused   Verdict = "confused"
)

var (
	refusalPrefixes = []string{
		"i don't know", "i dont know", "i do not know", "don't know", "dont know",
		"no idea", "idk", "dunno", "not really",
		"모르겠", "몰라", "잘 모르", "글쎄",
	}
	// refusalWords count as a refusal when the answer opens with the whole word.
	refusalWords = []string{"nothing"}
	bareNegatives = map[string]struct{}{
		"no": {}, "nope": {}, "nah": {}, "none": {}, "nothing": {}, "n/a": {},
		"아니": {}, "아니요": {}, "아뇨": {}, "없어": {}, "없어요": {}, "없음": {}, "없다": {},
	}
	confusionKeywords = []string{
		"not sure", "unsure", "hard to tell", "hard to say", "don't know", "dont know",
		"do not know", "no idea", "confused", "not certain", "can't decide", "cannot decide",
		"헷갈", "애매", "모르겠", "잘 모르", "글쎄", "확실하지",
	}

	digitRe        = regexp.MustCompile(`\p{Nd}`)
	relativeTimeRe = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|yesterday|soon|ago|within|by (monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b|\b(this|next|last|coming) (week|month|year|quarter|semester|weekend)\b|\bin (a|one|two|three|few|several|\d+) (days?|weeks?|months?|years?)\b|오늘|내일|어제|이번 ?주|다음 ?주|지난 ?주|이번 ?달|다음 ?달|올해|내년|작년|개월|주 ?안에|후에|전에`)
	optionMarkerRe = regexp.MustCompile(`(?i)\b(option|plan|choice|alternative) ?[a-z0-9]\b|[A-Za-z0-9]안|(^|\s)\(?\d[\).](\s|$)|(^|\s)[a-cA-C]\)|[①②③④⑤]`)
	separatorChars = ",/;·\n"
)

// Classifier judges whether a submitted answer is usable as is.
type Classifier struct {
	minLength int
}

// NewClassifier returns a classifier for the given strictness profile. A
// non-positive minimum falls back to the profile default.
func NewClassifier(profile Profile, lenientMin, strictMin int) *Classifier {
	if lenientMin <= 0 {
		lenientMin = DefaultLenientMin
	}
	if strictMin <= 0 {
		strictMin = DefaultStrictMin
	}

	minLength := lenientMin
	if profile == ProfileStrict {
		minLength = strictMin
	}
	return &Classifier{minLength: minLength}
}

func (c *Classifier) MinLength() int {
	return c.minLength
}

// Classify checks confusion before sparsity.
func (c *Classifier) Classify(answer string) Verdict {
	switch {
	case c.IsConfused(answer):
		return VerdictConfused
	case c.IsTooShort(answer):
		return VerdictTooShort
	default:
		return VerdictAcceptable
	}
}

// IsTooShort is true when the normalized answer is under the minimum length
// or reads as a refusal.
func (c *Classifier) IsTooShort(answer string) bool {
	norm := fold(answer)
	if norm == "" {
		return false
	}
	if utf8.RuneCountInString(norm) < c.minLength {
		return true
	}
	return isRefusal(norm)
}

// IsConfused is true only when the answer carries a confusion keyword and
// fewer than two information-density signals.
func (c *Classifier) IsConfused(answer string) bool {
	norm := fold(answer)
	if norm == "" {
		return false
	}
	if !containsAny(norm, confusionKeywords) {
		return false
	}
	return densitySignals(answer) < minDenseSignal
}

func fold(s string) string {
	return strings.ToLower(strings.ReplaceAll(textsim.Normalize(s), "’", "'"))
}

func isRefusal(norm string) bool {
	for _, p := range refusalPrefixes {
		if strings.HasPrefix(norm, p) {
			return true
		}
	}
	for _, w := range refusalWords {
		if startsWithWord(norm, w) {
			return true
		}
	}
	bare := strings.TrimFunc(norm, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	_, ok := bareNegatives[bare]
	return ok
}

func startsWithWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(s[len(word):])
	return next == utf8.RuneError || !(unicode.IsLetter(next) || unicode.IsDigit(next))
}

func densitySignals(answer string) int {
	raw := strings.TrimSpace(answer)
	norm := textsim.Normalize(raw)

	n := 0
	if digitRe.MatchString(norm) {
		n++
	}
	if relativeTimeRe.MatchString(norm) {
		n++
	}
	if optionMarkerRe.MatchString(raw) {
		n++
	}
	if utf8.RuneCountInString(norm) >= denseLength {
		n++
	}
	seps := 0
	for _, r := range raw {
		if strings.ContainsRune(separatorChars, r) {
			seps++
		}
	}
	if seps >= 2 {
		n++
	}
	return n
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
