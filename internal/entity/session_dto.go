package entity

import "time"

type StartSessionRequest struct {
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	DecisionType  string   `json:"decision_type,omitempty"`
	Persona       Persona  `json:"persona,omitempty"`
	Situation     string   `json:"situation,omitempty"`
	Goal          string   `json:"goal"`
	Options       []string `json:"options,omitempty"`
	Language      string   `json:"language,omitempty"`
	QuestionCount int      `json:"question_count,omitempty"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

type FollowUpRequest struct {
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// QuestionDTO is what the caller shows next.
type QuestionDTO struct {
	SessionID  string        `json:"session_id"`
	Slot       int           `json:"slot"`
	TotalSlots int           `json:"total_slots"`
	Question   string        `json:"question"`
	IsFollowUp bool          `json:"is_follow_up"`
	Subkind    AnswerSubkind `json:"subkind,omitempty"`
}

type SessionDTO struct {
	ID           string        `json:"session_id"`
	ParentID     *string       `json:"parent_id,omitempty"`
	Status       SessionStatus `json:"session_status"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	DecisionType string        `json:"decision_type,omitempty"`
	Persona      Persona       `json:"persona"`
	Language     string        `json:"language"`
	Goal         string        `json:"goal"`
	Options      []string      `json:"options,omitempty"`
	TargetCount  int           `json:"target_count"`
	Position     int           `json:"position"`
	Pending      *QuestionDTO  `json:"pending_question,omitempty"`
	HasReport    bool          `json:"has_report"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type TranscriptItem struct {
	Slot       int           `json:"slot"`
	Question   string        `json:"question"`
	Answer     string        `json:"answer"`
	Kind       AnswerKind    `json:"kind"`
	Subkind    AnswerSubkind `json:"subkind,omitempty"`
	AnsweredAt time.Time     `json:"answered_at"`
}

type TranscriptDTO struct {
	SessionID string           `json:"session_id"`
	Summary   string           `json:"summary,omitempty"`
	Items     []TranscriptItem `json:"items"`
}
