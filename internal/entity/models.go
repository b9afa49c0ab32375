package entity

import (
	"fmt"
	"time"
)

type SessionStatus string

// Session status represents where the interview currently stands
const (
	SessionStatusInterviewing   SessionStatus = "INTERVIEWING"     // Slots are still being asked/answered
	SessionStatusReadyForReport SessionStatus = "READY_FOR_REPORT" // Every slot has an accepted main answer
	SessionStatusDone           SessionStatus = "DONE"             // Report generated
)

type Persona string

const (
	PersonaAnalytical Persona = "analytical"
	PersonaValues     Persona = "values"
	PersonaAction     Persona = "action"
)

func (p *Persona) Validate() error {
	switch *p {
	case PersonaAnalytical, PersonaValues, PersonaAction:
		return nil
	default:
		return fmt.Errorf("%w: unknown persona '%s'", ErrInvalidParameter, *p)
	}
}

type AnswerKind string

const (
	AnswerKindMain  AnswerKind = "main"
	AnswerKindProbe AnswerKind = "probe"
)

type AnswerSubkind string

const (
	AnswerSubkindNone    AnswerSubkind = ""
	AnswerSubkindShort   AnswerSubkind = "short"
	AnswerSubkindReframe AnswerSubkind = "reframe"
)

// AnswerRecord is one submitted answer. Records are append-only; "go back"
// pops the latest one.
type AnswerRecord struct {
	Question  string        `json:"question"`
	Answer    string        `json:"answer"`
	Kind      AnswerKind    `json:"kind"`
	Subkind   AnswerSubkind `json:"subkind,omitempty"`
	MainIndex int           `json:"main_index"`
	CreatedAt time.Time     `json:"created_at"`
}

// ProbeState is the follow-up question pending for the current slot.
type ProbeState struct {
	Question  string        `json:"question"`
	Subkind   AnswerSubkind `json:"subkind"`
	MainIndex int           `json:"main_index"`
}

// DebugEntry is a free-form trace line kept on the session.
type DebugEntry struct {
	Event     string    `json:"event"`
	Slot      int       `json:"slot"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the single unit of work of the interview engine. It is passed by
// pointer through every engine call and persisted as a JSON document.
type Session struct {
	ID           string        `json:"session_id"`
	ParentID     *string       `json:"parent_id,omitempty"`
	Status       SessionStatus `json:"session_status"`
	Category     string        `json:"category"`
	DecisionType string        `json:"decision_type,omitempty"`
	Persona      Persona       `json:"persona"`
	Language     string        `json:"language"`
	Title        string        `json:"title"`
	Situation    string        `json:"situation,omitempty"`
	Goal         string        `json:"goal"`
	Options      []string      `json:"options,omitempty"`
	TargetCount  int           `json:"target_count"`

	Questions []string       `json:"questions"`
	Answers   []AnswerRecord `json:"answers"`
	Position  int            `json:"position"`
	Probe     *ProbeState    `json:"probe,omitempty"`

	// RetiredQuestions are follow-ups that were shown and then withdrawn by
	// going back. They still count as asked.
	RetiredQuestions []string `json:"retired_questions,omitempty"`

	SummaryText     string       `json:"summary_text,omitempty"`
	SummarizedCount int          `json:"summarized_count"`
	ConflictChecked map[int]bool `json:"conflict_checked,omitempty"`

	Report *Report      `json:"report,omitempty"`
	Debug  []DebugEntry `json:"debug,omitempty"`

	// Version counts stored updates. A save made from an older version is
	// rejected with ErrConcurrentUpdate.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MainAnswerCount returns the number of accepted main answers.
func (s *Session) MainAnswerCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.Kind == AnswerKindMain {
			n++
		}
	}
	return n
}

// IsComplete reports whether every slot has an accepted main answer.
func (s *Session) IsComplete() bool {
	return s.Position >= s.TargetCount && s.Probe == nil
}

// ResetProgress clears everything produced by the interview, keeping the
// session setup.
func (s *Session) ResetProgress() {
	s.Status = SessionStatusInterviewing
	s.Questions = []string{}
	s.Answers = []AnswerRecord{}
	s.Position = 0
	s.Probe = nil
	s.RetiredQuestions = nil
	s.SummaryText = ""
	s.SummarizedCount = 0
	s.ConflictChecked = map[int]bool{}
	s.Report = nil
	s.Debug = nil
}

// QuestionWithAnswer is a question/answer pair handed to prompts.
type QuestionWithAnswer struct {
	Slot     int    `json:"slot"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
