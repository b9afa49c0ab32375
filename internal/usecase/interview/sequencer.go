package interview

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/jsonx"
)

const maxQuestionRunes = 320

var listMarkerRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)]|(?i:q\d*:|question:))\s*`)

// slotQuestion generates the ordinary question for the current slot. It
// returns the question and where it came from.
func (e *Engine) slotQuestion(ctx context.Context, s *entity.Session, p *personaProfile) (string, string) {
	slot := s.Position
	asked := askedQuestions(s)
	pairs := mainPairs(s)

	system := systemPrompt(s, p)
	user := questionPrompt(s, p, slot, s.SummaryText, lastN(pairs, e.cfg.RecentWindow), asked)

	res := runGuarded(ctx, e.gen, guarded[string]{
		stage: "question",
		request: entity.GenerateRequest{
			System:      system,
			User:        user,
			Temperature: e.cfg.QuestionTemperature,
		},
		retry: func(rejected string, problems []string) entity.GenerateRequest {
			return entity.GenerateRequest{
				System:      system,
				User:        retryQuestionPrompt(user, rejected, problems),
				Temperature: e.cfg.RetryTemperature,
			}
		},
		parse:    parseQuestion,
		validate: e.questionProblems(asked),
		fallback: func() string {
			return e.fallbackQuestion(p, slot, s.TargetCount, asked)
		},
	})

	if res.Status == guardFallback {
		e.trace(s, "question_fallback", slot, errText(res.Err))
	}
	return res.Value, string(res.Status)
}

// probeQuestion builds the follow-up for a short or confused answer.
func (e *Engine) probeQuestion(
	ctx context.Context, s *entity.Session, subkind entity.AnswerSubkind, question, answer string,
) string {
	slot := s.Position
	asked := askedQuestions(s)
	p := e.persona(s)

	res := runGuarded(ctx, e.gen, guarded[string]{
		stage: "probe",
		request: entity.GenerateRequest{
			System:      systemPrompt(s, p),
			User:        probePrompt(s, subkind, question, answer, asked),
			Temperature: e.cfg.ProbeTemperature,
		},
		parse:    parseQuestion,
		validate: e.questionProblems(asked),
		fallback: func() string {
			return e.fallbackProbe(subkind, slot, asked)
		},
	})

	if res.Status == guardFallback {
		e.trace(s, "probe_fallback", slot, errText(res.Err))
	}
	return res.Value
}

func (e *Engine) questionProblems(asked []string) func(string) []string {
	return func(q string) []string {
		var problems []string
		if utf8.RuneCountInString(q) > maxQuestionRunes {
			problems = append(problems, "question is too long")
		}
		if e.scorer.IsSimilarToAny(q, asked) {
			problems = append(problems, "question repeats an earlier one")
		}
		return problems
	}
}

// parseQuestion accepts {"question": "..."} or, failing that, the first
// non-empty line of plain text.
func parseQuestion(text string) (string, bool) {
	if out, ok := jsonx.Decode[struct {
		Question string `json:"question"`
	}](text); ok {
		q := cleanQuestion(out.Question)
		return q, q != ""
	}
	if strings.Contains(text, "{") {
		return "", false
	}

	for _, line := range strings.Split(text, "\n") {
		if q := cleanQuestion(line); q != "" {
			return q, true
		}
	}
	return "", false
}

func cleanQuestion(s string) string {
	s = listMarkerRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.Trim(s, "\"'`“” ")
	return strings.Join(strings.Fields(s), " ")
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
