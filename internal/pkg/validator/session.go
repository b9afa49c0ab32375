package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

const (
	MaxTitleLength     = 120
	MaxGoalLength      = 500
	MaxSituationLength = 2000
	MaxOptionCount     = 6
	MaxOptionLength    = 120
	MaxAnswerLength    = 4000
)

// SupportedLanguages lists the response languages prompts can ask for.
var SupportedLanguages = map[string]bool{
	"en": true,
	"ko": true,
}

// Validator checks session requests against the configured limits
type Validator struct {
	cfg config.EngineConfig
}

func NewSessionValidator(cfg config.EngineConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateStartSession validates StartSessionRequest
func (v *Validator) ValidateStartSession(req *entity.StartSessionRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Goal) == "" {
		return fmt.Errorf("%w: goal", entity.ErrMissingField)
	}

	if err := maxRunes("title", req.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := maxRunes("goal", req.Goal, MaxGoalLength); err != nil {
		return err
	}
	if err := maxRunes("situation", req.Situation, MaxSituationLength); err != nil {
		return err
	}

	if len(req.Options) > MaxOptionCount {
		return fmt.Errorf("%w: at most %d options allowed, got %d", entity.ErrInvalidParameter, MaxOptionCount, len(req.Options))
	}
	for i, opt := range req.Options {
		if err := maxRunes(fmt.Sprintf("options[%d]", i), opt, MaxOptionLength); err != nil {
			return err
		}
	}

	if req.Persona != "" {
		if err := req.Persona.Validate(); err != nil {
			return err
		}
	}

	if req.Language != "" && !SupportedLanguages[strings.ToLower(req.Language)] {
		return fmt.Errorf("%w: unsupported language '%s'", entity.ErrInvalidParameter, req.Language)
	}

	if req.QuestionCount < 0 {
		return fmt.Errorf("%w: question_count must not be negative", entity.ErrInvalidParameter)
	}
	if req.QuestionCount > 0 && (req.QuestionCount < v.cfg.MinQuestions || req.QuestionCount > v.cfg.MaxQuestions) {
		return fmt.Errorf("%w: question_count must be between %d and %d",
			entity.ErrInvalidParameter, v.cfg.MinQuestions, v.cfg.MaxQuestions)
	}

	return nil
}

// ValidateAnswer rejects blank and oversized answers
func (v *Validator) ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return entity.ErrEmptyAnswer
	}
	return maxRunes("answer", answer, MaxAnswerLength)
}

func maxRunes(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%w: %s is %d characters (max %d)", entity.ErrInvalidParameter, field, n, limit)
	}
	return nil
}
