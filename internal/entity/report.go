package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Criterion struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// UnmarshalJSON accepts a full object, an object whose rank is a string
// ("2", "#2"), or a bare criterion name.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Criterion{Name: strings.TrimSpace(name)}
		return nil
	}

	var raw struct {
		Rank      json.RawMessage `json:"rank"`
		Name      string          `json:"name"`
		Criterion string          `json:"criterion"`
		Reason    string          `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rank, err := parseRank(raw.Rank)
	if err != nil {
		return err
	}
	if raw.Name == "" {
		raw.Name = raw.Criterion
	}
	*c = Criterion{Rank: rank, Name: strings.TrimSpace(raw.Name), Reason: raw.Reason}
	return nil
}

func parseRank(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("criterion rank %s is not a number", raw)
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("criterion rank %q is not a number", s)
	}
	return n, nil
}

type PlanStep struct {
	Step    string `json:"step"`
	When    string `json:"when,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

// UnmarshalJSON also accepts a step written as a plain string.
func (p *PlanStep) UnmarshalJSON(data []byte) error {
	var step string
	if err := json.Unmarshal(data, &step); err == nil {
		*p = PlanStep{Step: strings.TrimSpace(step)}
		return nil
	}
	type plain PlanStep
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PlanStep(v)
	return nil
}

// TextList is a list of sentences that also decodes from a single string.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one = strings.TrimSpace(one); one == "" {
			*l = TextList{}
		} else {
			*l = TextList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type Tradeoff struct {
	Option string `json:"option"`
	Gain   string `json:"gain"`
	Cost   string `json:"cost"`
}

type EmotionValue struct {
	Emotion string `json:"emotion"`
	Value   string `json:"value"`
}

// ReportDocument is the structured end-of-session summary. Only the block
// matching the session persona is filled.
type ReportDocument struct {
	Issue       string   `json:"issue"`
	Goal        string   `json:"goal"`
	Constraints TextList `json:"constraints"`
	Options     TextList `json:"options"`

	Criteria []Criterion `json:"criteria"`

	PlanSteps      []PlanStep     `json:"plan_steps,omitempty"`
	Uncertainties  TextList       `json:"uncertainties,omitempty"`
	Tradeoffs      []Tradeoff     `json:"tradeoffs,omitempty"`
	EmotionsValues []EmotionValue `json:"emotions_values,omitempty"`

	VerifyQuestions   TextList `json:"verify_questions"`
	CoachingSentences TextList `json:"coaching_sentences"`
	FollowUpQuestion  string   `json:"follow_up_question"`
}

// Report wraps the document with the outcome of policy validation.
type Report struct {
	Document    ReportDocument `json:"document"`
	Verified    bool           `json:"verified"`
	Violations  []string       `json:"violations,omitempty"`
	Regenerated bool           `json:"regenerated"`
	Fallback    bool           `json:"fallback"`
	CreatedAt   time.Time      `json:"created_at"`
}
