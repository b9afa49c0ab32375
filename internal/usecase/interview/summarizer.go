package interview

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/textsim"
)

const (
	maxSummaryLines   = 12
	extractSnippetLen = 60
)

// summarize folds unsummarized main answers into SummaryText once at least
// SummaryCadence of them have accrued.
func (e *Engine) summarize(ctx context.Context, s *entity.Session) {
	pairs := mainPairs(s)
	cadence := max(1, e.cfg.SummaryCadence)
	if s.SummarizedCount > len(pairs) {
		s.SummarizedCount = len(pairs)
	}
	if len(pairs) < cadence || len(pairs)-s.SummarizedCount < cadence {
		return
	}

	fresh := pairs[s.SummarizedCount:]
	existing := s.SummaryText
	bound := e.cfg.SummaryMaxChars

	res := runGuarded(ctx, e.gen, guarded[string]{
		stage: "summary",
		request: entity.GenerateRequest{
			System:      "You compress interview notes into short factual bullet lines.",
			User:        summaryPrompt(existing, fresh, bound),
			Temperature: e.cfg.SummaryTemperature,
		},
		parse: func(text string) (string, bool) {
			lines := bulletLines(text)
			if len(lines) == 0 {
				return "", false
			}
			return fitLines(lines[:min(len(lines), maxSummaryLines)], bound), true
		},
		fallback: func() string {
			return extractiveSummary(existing, fresh, bound)
		},
	})

	s.SummaryText = res.Value
	s.SummarizedCount = len(pairs)
	e.trace(s, "summary_"+string(res.Status), s.Position, "")
}

// extractiveSummary appends the first sentence of each new answer as a
// bullet and drops the oldest lines until the text fits.
func extractiveSummary(existing string, fresh []entity.QuestionWithAnswer, bound int) string {
	lines := bulletLines(existing)
	for _, qa := range fresh {
		if snippet := firstSentence(qa.Answer, extractSnippetLen); snippet != "" {
			lines = append(lines, "- "+snippet)
		}
	}
	return fitLines(lines, bound)
}

func bulletLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = textsim.Normalize(line)
		line = strings.TrimLeft(line, "-*• ")
		if line == "" {
			continue
		}
		lines = append(lines, "- "+line)
	}
	return lines
}

// fitLines joins lines, dropping from the front until the result is within
// bound runes. A single oversized line is cut.
func fitLines(lines []string, bound int) string {
	for len(lines) > 1 && utf8.RuneCountInString(strings.Join(lines, "\n")) > bound {
		lines = lines[1:]
	}
	return truncateRunes(strings.Join(lines, "\n"), bound)
}

func firstSentence(text string, limit int) string {
	text = textsim.Normalize(text)
	if i := strings.IndexAny(text, ".!?。"); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		text = text[:i+size]
	}
	return truncateRunes(text, limit)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
