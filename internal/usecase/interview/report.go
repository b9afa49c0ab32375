package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/jsonx"
	"go.uber.org/zap"
)

func (e *Engine) buildReport(ctx context.Context, s *entity.Session, p *personaProfile) *entity.Report {
	system := systemPrompt(s, p)
	user := reportPrompt(s, p, s.Answers)

	res := runGuarded(ctx, e.gen, guarded[entity.ReportDocument]{
		stage: "report",
		request: entity.GenerateRequest{
			System:      system,
			User:        user,
			Temperature: e.cfg.ReportTemperature,
		},
		retry: func(_ string, violations []string) entity.GenerateRequest {
			return entity.GenerateRequest{
				System:      system,
				User:        strictReportPrompt(user, violations),
				Temperature: e.cfg.ReportTemperature,
			}
		},
		parse: func(text string) (entity.ReportDocument, bool) {
			return parseReport(text, s)
		},
		validate:     scanPolicy,
		fallback:     func() entity.ReportDocument { return skeletonReport(s, p) },
		keepRejected: true,
	})

	report := &entity.Report{
		Document:    res.Value,
		Regenerated: res.Calls > 1,
		Fallback:    res.Status == guardFallback,
		CreatedAt:   e.now(),
	}
	switch res.Status {
	case guardAccepted, guardRetried:
		report.Verified = true
	case guardRejectedKept:
		report.Violations = res.Problems
	case guardFallback:
		report.Violations = scanPolicy(res.Value)
		report.Verified = len(report.Violations) == 0
	}

	e.trace(s, "report_"+string(res.Status), s.Position, strings.Join(res.Problems, ", "))
	ctxzap.Info(ctx, "report generated",
		zap.String("status", string(res.Status)),
		zap.Bool("verified", report.Verified),
		zap.Int("generator_calls", res.Calls),
	)
	return report
}

// parseReport decodes the model output and fills gaps from the session.
func parseReport(text string, s *entity.Session) (entity.ReportDocument, bool) {
	doc, ok := jsonx.Decode[entity.ReportDocument](text)
	if !ok {
		return doc, false
	}
	doc.Criteria = rankCriteria(doc.Criteria)
	if doc.Issue == "" && doc.Goal == "" && len(doc.CoachingSentences) == 0 && len(doc.Criteria) == 0 {
		return doc, false
	}

	if doc.Issue == "" {
		doc.Issue = issueLine(s)
	}
	if doc.Goal == "" {
		doc.Goal = s.Goal
	}
	if len(doc.Options) == 0 && len(s.Options) > 0 {
		doc.Options = append([]string(nil), s.Options...)
	}
	if doc.FollowUpQuestion == "" {
		doc.FollowUpQuestion = defaultFollowUp
	}
	return ensureSlices(doc), true
}

// rankCriteria drops unnamed entries and numbers the ones without a rank by
// their position.
func rankCriteria(in []entity.Criterion) []entity.Criterion {
	out := make([]entity.Criterion, 0, len(in))
	for _, c := range in {
		if c.Name == "" {
			continue
		}
		if c.Rank <= 0 {
			c.Rank = len(out) + 1
		}
		out = append(out, c)
	}
	return out
}

const defaultFollowUp = "What would I need to know, or feel, to be ready to decide?"

// skeletonReport is built from local fields only, for when generation fails.
func skeletonReport(s *entity.Session, p *personaProfile) entity.ReportDocument {
	pairs := mainPairs(s)

	doc := entity.ReportDocument{
		Issue:   issueLine(s),
		Goal:    s.Goal,
		Options: append([]string(nil), s.Options...),
		VerifyQuestions: []string{
			"Which of the facts I am relying on have I not checked yet?",
			"Whose view on this have I not heard yet?",
			"What would change if I gave myself one more week?",
		},
		CoachingSentences: []string{
			fmt.Sprintf("You described this decision as: %s.", strings.TrimSuffix(s.Title, ".")),
			fmt.Sprintf("You said that what you want from this is: %s.", strings.TrimSuffix(s.Goal, ".")),
			fmt.Sprintf("You answered %d questions, and your own words are the best record of what matters to you.", len(pairs)),
		},
		FollowUpQuestion: defaultFollowUp,
	}

	for i, qa := range pairs {
		if i >= 3 {
			break
		}
		if snippet := firstSentence(qa.Answer, extractSnippetLen); snippet != "" {
			doc.CoachingSentences = append(doc.CoachingSentences, fmt.Sprintf("In your words: \"%s\"", snippet))
		}
	}

	switch p.ReportBlock {
	case reportBlockPlan:
		doc.PlanSteps = []entity.PlanStep{{
			Step: "The first concrete step you mentioned, written in your own words",
			When: "A day you pick",
		}}
	case reportBlockEmotions:
		doc.EmotionsValues = []entity.EmotionValue{{
			Emotion: "The feeling that came up most often in your answers",
			Value:   "The value that feeling seems to protect",
		}}
	default:
		doc.Uncertainties = []string{"The open question that came up most often in your answers"}
	}
	return ensureSlices(doc)
}

func issueLine(s *entity.Session) string {
	if s.Situation == "" {
		return s.Title
	}
	return fmt.Sprintf("%s: %s", s.Title, s.Situation)
}

func ensureSlices(doc entity.ReportDocument) entity.ReportDocument {
	if doc.Constraints == nil {
		doc.Constraints = []string{}
	}
	if doc.Options == nil {
		doc.Options = []string{}
	}
	if doc.Criteria == nil {
		doc.Criteria = []entity.Criterion{}
	}
	if doc.VerifyQuestions == nil {
		doc.VerifyQuestions = []string{}
	}
	if doc.CoachingSentences == nil {
		doc.CoachingSentences = []string{}
	}
	return doc
}
