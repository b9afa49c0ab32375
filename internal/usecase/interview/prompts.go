package interview

import (
	"fmt"
	"strings"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

const coachRules = `You are a decision coach, not an advisor.
- Help the user think; never recommend, conclude or choose for them.
- Mirror what the user said in their own terms.
- Ask exactly one question at a time, one or two sentences long.`

var languageNames = map[string]string{
	"en": "English",
	"ko": "Korean",
}

func languageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

func systemPrompt(s *entity.Session, p *personaProfile) string {
	return fmt.Sprintf("%s\n%s\nAlways respond in %s.", coachRules, p.Style, languageName(s.Language))
}

func writeSetup(b *strings.Builder, s *entity.Session) {
	fmt.Fprintf(b, "Topic: %s\n", s.Title)
	if s.Category != "" {
		fmt.Fprintf(b, "Category: %s\n", s.Category)
	}
	if s.DecisionType != "" {
		fmt.Fprintf(b, "Decision type: %s\n", s.DecisionType)
	}
	if s.Situation != "" {
		fmt.Fprintf(b, "Situation: %s\n", s.Situation)
	}
	fmt.Fprintf(b, "What the user wants from this session: %s\n", s.Goal)
	if len(s.Options) > 0 {
		fmt.Fprintf(b, "Options the user named: %s\n", strings.Join(s.Options, "; "))
	}
}

func writePairs(b *strings.Builder, pairs []entity.QuestionWithAnswer) {
	for _, qa := range pairs {
		fmt.Fprintf(b, "Q%d: %s\nA%d: %s\n", qa.Slot+1, qa.Question, qa.Slot+1, qa.Answer)
	}
}

// writeContext adds the bounded interview context: summary plus recent pairs.
func writeContext(b *strings.Builder, summary string, recent []entity.QuestionWithAnswer) {
	if summary != "" {
		fmt.Fprintf(b, "\nSummary of earlier answers:\n%s\n", summary)
	}
	if len(recent) > 0 {
		b.WriteString("\nMost recent answers:\n")
		writePairs(b, recent)
	}
}

func questionPrompt(
	s *entity.Session, p *personaProfile, slot int, summary string,
	recent []entity.QuestionWithAnswer, asked []string,
) string {
	var b strings.Builder
	writeSetup(&b, s)
	writeContext(&b, summary, recent)

	if len(asked) > 0 {
		b.WriteString("\nQuestions already asked (do not repeat or paraphrase them):\n")
		for _, q := range asked {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	fmt.Fprintf(&b, "\nThis is question %d of %d.\n", slot+1, s.TargetCount)
	fmt.Fprintf(&b, "Purpose of this question: %s.\n", p.slotPurpose(slot, s.TargetCount))
	b.WriteString("Build on what the user already said. Return only JSON: {\"question\": \"...\"}")
	return b.String()
}

func retryQuestionPrompt(base string, rejected string, problems []string) string {
	return fmt.Sprintf(
		"%s\n\nYour previous attempt was rejected (%s):\n%s\nAsk about a different angle with different wording.",
		base, strings.Join(problems, "; "), strings.TrimSpace(rejected),
	)
}

func probePrompt(
	s *entity.Session, subkind entity.AnswerSubkind, question, answer string, asked []string,
) string {
	var b strings.Builder
	writeSetup(&b, s)
	fmt.Fprintf(&b, "\nQuestion: %s\nUser answer: %s\n", question, answer)

	switch subkind {
	case entity.AnswerSubkindReframe:
		b.WriteString("\nThe user seems unsure or evasive. Ask for the same information again, more concretely and narrowly, so it is easy to answer.\n")
	default:
		b.WriteString("\nThe answer is relevant but sparse. Ask for one concrete elaboration: an example, a number, a date or a reason.\n")
	}
	if len(asked) > 0 {
		b.WriteString("Do not repeat any of these questions:\n")
		for _, q := range asked {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	b.WriteString("Return only JSON: {\"question\": \"...\"}")
	return b.String()
}

func conflictPrompt(s *entity.Session, pairs []entity.QuestionWithAnswer) string {
	var b strings.Builder
	writeSetup(&b, s)
	b.WriteString("\nAnswers so far:\n")
	writePairs(&b, pairs)
	b.WriteString(`
Check whether the stated priorities or criteria contradict each other (for example "stability matters most" and later "I would trade stability for growth").
Do not judge factual correctness. If there is a real tension, write one neutral question that asks the user to resolve it.
Return only JSON: {"has_conflict": true|false, "conflict_summary": "...", "question": "..."}`)
	return b.String()
}

func summaryPrompt(existing string, pairs []entity.QuestionWithAnswer, maxChars int) string {
	var b strings.Builder
	if existing != "" {
		fmt.Fprintf(&b, "Current summary:\n%s\n\n", existing)
	}
	b.WriteString("New answers:\n")
	writePairs(&b, pairs)
	fmt.Fprintf(&b, `
Merge the new answers into the summary as 8 to 12 short bullet lines starting with "- ".
Keep the user's own facts, constraints, feelings and priorities. No advice and no conclusions.
Stay under %d characters. Return only the bullet lines.`, maxChars)
	return b.String()
}

func reportPrompt(s *entity.Session, p *personaProfile, transcript []entity.AnswerRecord) string {
	var b strings.Builder
	writeSetup(&b, s)
	b.WriteString("\nFull interview transcript:\n")
	for _, r := range transcript {
		fmt.Fprintf(&b, "[%d %s] Q: %s\nA: %s\n", r.MainIndex+1, r.Kind, r.Question, r.Answer)
	}

	fmt.Fprintf(&b, `
Write a mirroring summary of this interview as JSON with exactly this shape:
{"issue": "string", "goal": "string", "constraints": ["string"], "options": ["string"],
 "criteria": [{"rank": 1, "name": "string", "reason": "string"}],
 %s,
 "verify_questions": ["string"], "coaching_sentences": ["string"], "follow_up_question": "string"}
Rules:
- Rank criteria by how strongly the user expressed them.
- "verify_questions": 2 to 4 things the user could still check.
- "coaching_sentences": 3 to 5 sentences that restate what the user said or implied.
- "follow_up_question": one question the user can ask themselves next.
- Never give a recommendation, verdict or conclusion. Never tell the user what to choose or do.
Return only the JSON object.`, p.BlockSchema)
	return b.String()
}

func strictReportPrompt(base string, violations []string) string {
	return fmt.Sprintf(
		"%s\n\nYour previous draft contained advice-giving phrasing (%s). Rewrite it so that no sentence recommends, concludes or tells the user what to pick. Only mirror the user's own words.",
		base, strings.Join(violations, ", "),
	)
}
