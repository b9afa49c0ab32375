package interview

import (
	"testing"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

func TestPositionFor(t *testing.T) {
	tests := []struct {
		slot, total int
		want        slotPosition
	}{
		{0, 3, positionFirst},
		{1, 3, positionSecond},
		{2, 3, positionLast},
		{0, 7, positionFirst},
		{1, 7, positionSecond},
		{2, 7, positionGeneral},
		{3, 7, positionMiddle},
		{4, 7, positionGeneral},
		{5, 7, positionSecondToLast},
		{6, 7, positionLast},
		{6, 12, positionMiddle},
		{10, 12, positionSecondToLast},
	}
	for _, tt := range tests {
		if got := positionFor(tt.slot, tt.total); got != tt.want {
			t.Errorf("positionFor(%d, %d) = %s, want %s", tt.slot, tt.total, got, tt.want)
		}
	}
}

func TestSlotPurposeDependsOnPersona(t *testing.T) {
	analytical := personas[entity.PersonaAnalytical].slotPurpose(3, 7)
	values := personas[entity.PersonaValues].slotPurpose(3, 7)
	action := personas[entity.PersonaAction].slotPurpose(3, 7)
	if analytical == values || values == action || analytical == action {
		t.Errorf("middle slot purposes are not persona specific: %q / %q / %q", analytical, values, action)
	}

	if got := personas[entity.PersonaAction].slotPurpose(2, 7); got != flowPurposes[flowStage(2, 7)] {
		t.Errorf("general slot purpose = %q", got)
	}
}

func TestResolvePersona(t *testing.T) {
	if got := resolvePersona("unknown", entity.PersonaValues); got.ID != entity.PersonaValues {
		t.Errorf("fallback persona = %s", got.ID)
	}
	if got := resolvePersona("unknown", "also unknown"); got.ID != entity.PersonaAnalytical {
		t.Errorf("last resort persona = %s", got.ID)
	}
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{`{"question": "What matters most?"}`, "What matters most?", true},
		{"Sure:\n```json\n{\"question\": \"  Why   now? \"}\n```", "Why now?", true},
		{"\n1. \"What would you regret?\"\n", "What would you regret?", true},
		{"Question: Who else is involved?", "Who else is involved?", true},
		{`{"question": ""}`, "", false},
		{`{"question": "unterminated`, "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := parseQuestion(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseQuestion(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFallbackQuestionSkipsAskedEntries(t *testing.T) {
	e := newTestEngine(failingGenerator())
	p := personas[entity.PersonaAction]

	first := e.fallbackQuestion(p, 0, 5, nil)
	second := e.fallbackQuestion(p, 0, 5, []string{first})
	if first == second || e.scorer.IsSimilar(first, second) {
		t.Errorf("fallback repeated itself: %q / %q", first, second)
	}
}

func TestFlowStage(t *testing.T) {
	for total := 3; total <= 12; total++ {
		prev := -1
		for slot := 0; slot < total; slot++ {
			stage := flowStage(slot, total)
			if stage < prev || stage >= len(flowBank) {
				t.Fatalf("flowStage(%d, %d) = %d after %d", slot, total, stage, prev)
			}
			prev = stage
		}
	}
}
