package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"go.uber.org/zap"
)

var (
	purposeRe = regexp.MustCompile(`Purpose of this question: (.+?)\.\n`)
	topicRe   = regexp.MustCompile(`(?m)^Topic: (.+)$`)
	goalRe    = regexp.MustCompile(`(?m)^What the user wants from this session: (.+)$`)
	answerRe  = regexp.MustCompile(`(?m)^A\d+: (.+)$`)
)

var mockOpeners = []string{
	"Looking at %s, what stands out for you right now?",
	"When you think about %s, which detail feels most important?",
	"How would you describe %s in your own words?",
	"What example comes to mind about %s?",
	"Which part of %s would you want to understand better first?",
	"If a friend asked you about %s, what would you tell them?",
}

// MockConnector is a deterministic generator used when ENABLE_MOCKS=true.
// It recognises the engine's prompt kinds and answers with well-formed output.
type MockConnector struct {
	logger *zap.Logger
	calls  atomic.Uint64
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, req entity.GenerateRequest) (string, error) {
	n := m.calls.Add(1)
	user := req.User

	switch {
	case strings.Contains(user, `"has_conflict"`):
		ctxzap.Info(ctx, "[MOCK] conflict check")
		return `{"has_conflict": false, "conflict_summary": "", "question": ""}`, nil

	case strings.Contains(user, "Merge the new answers"):
		ctxzap.Info(ctx, "[MOCK] summary")
		return mockSummary(user), nil

	case strings.Contains(user, "mirroring summary"):
		ctxzap.Info(ctx, "[MOCK] report")
		return mockReport(user)

	case strings.Contains(user, "User answer:"):
		ctxzap.Info(ctx, "[MOCK] follow-up question")
		return mockQuestion(fmt.Sprintf("Could you add one concrete example, number or date to that (%d)?", n)), nil

	default:
		ctxzap.Info(ctx, "[MOCK] slot question")
		purpose := "this decision"
		if match := purposeRe.FindStringSubmatch(user); match != nil {
			purpose = strings.ToLower(match[1])
		}
		opener := mockOpeners[int(n)%len(mockOpeners)]
		return mockQuestion(fmt.Sprintf(opener, purpose)), nil
	}
}

func mockQuestion(q string) string {
	data, _ := json.Marshal(map[string]string{"question": q})
	return string(data)
}

func mockSummary(user string) string {
	var b strings.Builder
	for _, m := range answerRe.FindAllStringSubmatch(user, 12) {
		answer := []rune(m[1])
		if len(answer) > 80 {
			answer = answer[:80]
		}
		fmt.Fprintf(&b, "- %s\n", string(answer))
	}
	return strings.TrimSpace(b.String())
}

func mockReport(user string) (string, error) {
	issue := "the decision at hand"
	if m := topicRe.FindStringSubmatch(user); m != nil {
		issue = m[1]
	}
	goal := ""
	if m := goalRe.FindStringSubmatch(user); m != nil {
		goal = m[1]
	}

	doc := entity.ReportDocument{
		Issue: issue,
		Goal:  goal,
		Criteria: []entity.Criterion{
			{Rank: 1, Name: "What you said matters most", Reason: "It came up first in your answers."},
		},
		PlanSteps: []entity.PlanStep{
			{Step: "List the facts you still miss", When: "this week", Outcome: "You know what to look up."},
		},
		Tradeoffs: []entity.Tradeoff{
			{Option: "Keeping things as they are", Gain: "Familiar ground", Cost: "The open questions stay open"},
		},
		EmotionsValues: []entity.EmotionValue{
			{Emotion: "Uncertainty", Value: "Wanting to get this right"},
		},
		Uncertainties:     []string{"Which of your criteria would hold up in six months"},
		VerifyQuestions:   []string{"What information would change how you see this?", "Who else is affected by this decision?"},
		CoachingSentences: []string{"You described this decision in your own words.", "You named what matters to you.", "You noted what is still unclear."},
		FollowUpQuestion:  "What would you want to know before taking the next step?",
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal mock report: %w", err)
	}
	return string(data), nil
}
