package interview

import (
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

// flowBank follows the default coaching flow: emotion and need, real
// constraints, values, alternatives, risk and opportunity cost, regret,
// a small experiment.
var flowBank = [][]string{
	{
		"Which feeling is strongest right now when you picture this decision, and where does it show up?",
		"What need sits underneath that feeling, for example safety, recognition, rest or growth?",
	},
	{
		"Which real constraints are fixed here, such as money, deadlines, health or obligations to others?",
		"Which of those limits could actually bend if someone asked, and which ones truly cannot move?",
	},
	{
		"Looking at your last few months, what have you protected even when it cost you something?",
		"If only two priorities could survive this choice, which two would you keep and why those?",
	},
	{
		"Besides the options already on the table, what third path have you quietly dismissed?",
		"Could any mixed or staged version combine parts of several options instead of choosing one whole?",
	},
	{
		"What is the worst realistic outcome of each path, and how would you recover from it?",
		"By taking one path, what opportunity disappears for good, and how much does losing it weigh?",
	},
	{
		"Imagine yourself at eighty looking back: which choice would leave the smaller regret?",
		"Which regret feels heavier to you: having tried and failed, or never having tried at all?",
	},
	{
		"What small experiment lasting under two weeks could test your main assumption cheaply?",
		"Who could you talk with this month to collect one missing piece of information?",
	},
}

var personaBank = map[entity.Persona]map[slotPosition][]string{
	entity.PersonaAnalytical: {
		positionFirst: {
			"Describe the situation in a few sentences: what happened, who is involved, and why it matters now.",
			"Which facts about this situation are certain, and which parts are still guesses?",
		},
		positionSecond: {
			"How will you recognise a good outcome here? Name one sign you could observe or count.",
			"Six months from now, what measurable change would show that this went well?",
		},
		positionMiddle: {
			"List three criteria for judging the options and give each a weight out of ten.",
			"Score each option from one to five against your single most important criterion.",
		},
		positionSecondToLast: {
			"Which assumption in your reasoning carries the most weight, and what evidence supports it?",
			"What new information would make you reverse your current leaning?",
		},
		positionLast: {
			"Summing up your trade-offs, which uncertainty remains largest and how might you shrink it?",
			"Which single data point would most change your confidence, and how could you obtain it?",
		},
	},
	entity.PersonaValues: {
		positionFirst: {
			"Tell me about the moment this decision started to weigh on you. What was going on?",
			"When you think about this choice, whose voice or expectations come up first?",
		},
		positionSecond: {
			"If this went well for you personally, how would your days feel different?",
			"What would you like to feel once this decision is behind you?",
		},
		positionMiddle: {
			"Name the emotions each option brings up, and which value each emotion is guarding.",
			"Which option fits the person you want to become, and which fits expectations placed on you?",
		},
		positionSecondToLast: {
			"Where do your own values and the expectations of people close to you pull apart?",
			"Which value are you willing to compromise on a little, and which one never?",
		},
		positionLast: {
			"Picture telling someone you trust about your choice. Which version makes you proud?",
			"Reading back over everything you shared, what do you notice about what you care for most?",
		},
	},
	entity.PersonaAction: {
		positionFirst: {
			"In one or two sentences, what decision needs to be made and by when?",
			"What triggered the need to decide now rather than later?",
		},
		positionSecond: {
			"Define finished for this decision: what concrete result would tell you it is done?",
			"Which number, date or milestone would show you are on track?",
		},
		positionMiddle: {
			"Of everything on your plate for this, which single task comes first, and which can wait?",
			"Rank the open tasks by impact and effort. Which one gives the biggest result for least effort?",
		},
		positionSecondToLast: {
			"What obstacle is most likely to stall your first step, and how will you handle it?",
			"Who or what do you depend on to move forward, and when will you check in with them?",
		},
		positionLast: {
			"What is the very first step you will take, and on which day will you take it?",
			"Within the next 48 hours, which action will you complete to get moving?",
		},
	},
}

var probeBank = map[entity.AnswerSubkind][]string{
	entity.AnswerSubkindShort: {
		"Could you add one concrete example that shows what you mean?",
		"Can you say a bit more, perhaps with a number, a date or a name?",
		"What happened most recently that made this feel true?",
		"Could you describe that in a sentence or two more detail?",
		"Which part of that matters most to you, and why that part?",
		"Can you walk me through a specific day when this came up?",
		"If a friend asked for details, what would you tell them first?",
		"How would that look in practice next week?",
		"What makes you say so? One reason is enough.",
		"Is there a situation from last year that illustrates it?",
		"What would change if this were not the case?",
		"Could you expand on that with anything you have already tried?",
	},
	entity.AnswerSubkindReframe: {
		"Let me ask it differently: between the options, which feels heavier today?",
		"Put simply, what outcome worries you more than any other?",
		"If you had to guess, what would your answer be?",
		"Try completing this sentence: the thing I keep coming back to is ...",
		"What would you tell a close friend facing this exact situation?",
		"On a scale from one to ten, how strongly do you lean toward change?",
		"Forget the right answer for a moment. What does your gut say?",
		"Which small piece of this are you sure about, even if the rest is unclear?",
		"What information is missing that makes this difficult to answer?",
		"Picture having already decided. Which choice brings relief?",
		"Narrowing it down: is it more about time, money or people?",
		"What would make this question easier to answer?",
	},
}

// fallbackQuestion returns the first bank entry for the slot that does not
// collide with an already asked question.
func (e *Engine) fallbackQuestion(p *personaProfile, slot, total int, asked []string) string {
	pos := positionFor(slot, total)

	var ordered []string
	if pos == positionGeneral {
		ordered = append(ordered, rotate(flowBank[flowStage(slot, total)], slot)...)
	} else {
		ordered = append(ordered, rotate(personaBank[p.ID][pos], slot)...)
	}
	for i := range flowBank {
		stage := flowBank[(flowStage(slot, total)+i)%len(flowBank)]
		ordered = append(ordered, stage...)
	}
	for _, pos := range slotPositions {
		ordered = append(ordered, personaBank[p.ID][pos]...)
	}

	return e.firstFresh(ordered, asked)
}

// fallbackProbe picks a follow-up for a poor answer.
func (e *Engine) fallbackProbe(subkind entity.AnswerSubkind, slot int, asked []string) string {
	other := entity.AnswerSubkindShort
	if subkind == entity.AnswerSubkindShort {
		other = entity.AnswerSubkindReframe
	}
	ordered := append(rotate(probeBank[subkind], slot), probeBank[other]...)
	return e.firstFresh(ordered, asked)
}

func (e *Engine) firstFresh(ordered, asked []string) string {
	for _, q := range ordered {
		if !e.scorer.IsSimilarToAny(q, asked) {
			return q
		}
	}
	// Every entry was already used; repeating is better than asking nothing.
	return ordered[0]
}

func rotate(items []string, by int) []string {
	if len(items) == 0 {
		return nil
	}
	by %= len(items)
	out := make([]string, 0, len(items))
	out = append(out, items[by:]...)
	return append(out, items[:by]...)
}

// flowStage maps a slot onto the coaching flow proportionally.
func flowStage(slot, total int) int {
	if total <= 0 {
		return 0
	}
	stage := slot * len(flowBank) / total
	return min(stage, len(flowBank)-1)
}
