package quality

import (
	"testing"
	"unicode/utf8"

	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/textsim"
)

func TestClassify(t *testing.T) {
	lenient := NewClassifier(ProfileLenient, 0, 0)
	strict := NewClassifier(ProfileStrict, 0, 0)

	tests := []struct {
		name string
		c    *Classifier
		in   string
		want Verdict
	}{
		{"blank", lenient, "   ", VerdictAcceptable},
		{"very short", lenient, "ok", VerdictTooShort},
		{"refusal prefix", lenient, "nothing really matters to me here", VerdictTooShort},
		{"nothing opener", lenient, "Nothing comes to mind at all", VerdictTooShort},
		{"nothing with punctuation", lenient, "Nothing, honestly. Ask me later", VerdictTooShort},
		{"word starting with nothing", lenient, "Nothingness scares me less than staying put", VerdictAcceptable},
		{"bare korean negative", lenient, "아니요.", VerdictTooShort},
		{"confused filler", lenient, "I don't know, 6 words filler", VerdictConfused},
		{"curly apostrophe", lenient, "I don’t know, honestly", VerdictConfused},
		{"korean confusion", lenient, "헷갈려요", VerdictConfused},
		{"dense answer mentioning doubt", lenient, "I'm not sure, but option A pays 20% more and I must answer by next month", VerdictAcceptable},
		{"strict rejects medium", strict, "I want more time.", VerdictTooShort},
		{"lenient accepts medium", lenient, "I want more time.", VerdictAcceptable},
		{"concrete action", lenient, "I will email my manager about a transfer this Friday.", VerdictAcceptable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsConfusedDensityGuard(t *testing.T) {
	c := NewClassifier(ProfileLenient, 0, 0)
	answers := []string{
		"Not sure yet; 2 offers, one starts next week",
		"hard to tell: plan B costs 3000 and takes two months",
		"애매하지만 A안은 연봉이 10% 높고, 다음 달에 결정해야 해요",
	}
	for _, a := range answers {
		if densitySignals(a) < minDenseSignal {
			t.Fatalf("fixture %q has only %d density signals", a, densitySignals(a))
		}
		if c.IsConfused(a) {
			t.Errorf("IsConfused(%q) = true for a dense answer", a)
		}
	}
}

func TestIsTooShortImpliesLengthOrRefusal(t *testing.T) {
	c := NewClassifier(ProfileStrict, 0, 0)
	answers := []string{
		"", "no", "No.", "idk lol", "I don't know what to say about it honestly",
		"Moving closer to family matters more than salary.", "몰라요 그냥 그래요", "없음",
		"The deadline is fixed and I cannot move it.",
	}
	for _, a := range answers {
		if !c.IsTooShort(a) {
			continue
		}
		short := utf8.RuneCountInString(textsim.Normalize(a)) < c.MinLength()
		if !short && !isRefusal(fold(a)) {
			t.Errorf("IsTooShort(%q) fired without a length or refusal reason", a)
		}
	}
}

func TestNewClassifierMinimums(t *testing.T) {
	if got := NewClassifier(ProfileLenient, 12, 20).MinLength(); got != 12 {
		t.Errorf("lenient min = %d, want 12", got)
	}
	if got := NewClassifier(ProfileStrict, 12, 20).MinLength(); got != 20 {
		t.Errorf("strict min = %d, want 20", got)
	}
	if got := NewClassifier("unknown", 0, 0).MinLength(); got != DefaultLenientMin {
		t.Errorf("unknown profile min = %d, want %d", got, DefaultLenientMin)
	}
}
