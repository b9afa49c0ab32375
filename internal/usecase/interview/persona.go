package interview

import (
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

type slotPosition string

const (
	positionFirst        slotPosition = "first"
	positionSecond       slotPosition = "second"
	positionMiddle       slotPosition = "middle"
	positionSecondToLast slotPosition = "second_to_last"
	positionLast         slotPosition = "last"
	positionGeneral      slotPosition = "general"
)

var slotPositions = []slotPosition{
	positionFirst, positionSecond, positionMiddle, positionSecondToLast, positionLast,
}

// positionFor resolves a slot to its template position. Earlier entries win
// when positions overlap in short interviews.
func positionFor(slot, total int) slotPosition {
	switch {
	case slot == 0:
		return positionFirst
	case slot == total-1:
		return positionLast
	case slot == 1:
		return positionSecond
	case slot == total/2:
		return positionMiddle
	case slot == total-2:
		return positionSecondToLast
	default:
		return positionGeneral
	}
}

type reportBlock string

const (
	reportBlockPlan      reportBlock = "plan_steps"
	reportBlockTradeoffs reportBlock = "tradeoffs"
	reportBlockEmotions  reportBlock = "emotions_values"
)

// personaProfile is everything a persona changes: phrasing, slot purposes and
// the report block.
type personaProfile struct {
	ID          entity.Persona
	Style       string
	Slots       map[slotPosition]string
	ReportBlock reportBlock
	BlockSchema string
}

var flowPurposes = []string{
	"surface the strongest emotion and the need underneath it",
	"separate the real, fixed constraints from the ones that could bend",
	"find out which values and priorities the user actually lives by",
	"widen the option set with alternatives or mixed paths not yet considered",
	"weigh the realistic risks and the opportunity cost of each path",
	"apply a regret-minimisation lens to the options",
	"identify one small, cheap experiment or next step that would reduce uncertainty",
}

var personas = map[entity.Persona]*personaProfile{
	entity.PersonaAnalytical: {
		ID:    entity.PersonaAnalytical,
		Style: "Coach style: analytical. Ask precise, structured questions that separate facts from assumptions and invite criteria, weights and evidence.",
		Slots: map[slotPosition]string{
			positionFirst:        "clarify the situation: what is happening, who is involved, why it matters now",
			positionSecond:       "make the goal measurable: an observable or countable sign of a good outcome",
			positionMiddle:       "force structured criteria: ask the user to name decision criteria and weight or score them",
			positionSecondToLast: "expose the load-bearing assumption and what evidence would change the user's mind",
			positionLast:         "close by naming the largest remaining uncertainty and how it could be reduced",
		},
		ReportBlock: reportBlockTradeoffs,
		BlockSchema: `"uncertainties": ["string"], "tradeoffs": [{"option": "string", "gain": "string", "cost": "string"}]`,
	},
	entity.PersonaValues: {
		ID:    entity.PersonaValues,
		Style: "Coach style: values-centred. Ask warm, reflective questions about feelings, meaning and what the user wants to protect.",
		Slots: map[slotPosition]string{
			positionFirst:        "clarify the situation through the moment the decision started to matter personally",
			positionSecond:       "make the goal tangible: how life would feel different if this went well",
			positionMiddle:       "label emotions: name the feelings each option raises and the value each feeling protects",
			positionSecondToLast: "contrast the user's own values with expectations of others",
			positionLast:         "close by reflecting which choice the user would be proud to explain",
		},
		ReportBlock: reportBlockEmotions,
		BlockSchema: `"emotions_values": [{"emotion": "string", "value": "string"}]`,
	},
	entity.PersonaAction: {
		ID:    entity.PersonaAction,
		Style: "Coach style: action-oriented. Ask short, concrete questions about tasks, order, deadlines and the very next step.",
		Slots: map[slotPosition]string{
			positionFirst:        "clarify the decision to be made and its deadline",
			positionSecond:       "make the goal measurable: a concrete result, number or date that means done",
			positionMiddle:       "prioritise: which single task comes first and which can wait",
			positionSecondToLast: "anticipate the obstacle most likely to stall the first step",
			positionLast:         "close by fixing the first concrete step and the day it happens",
		},
		ReportBlock: reportBlockPlan,
		BlockSchema: `"plan_steps": [{"step": "string", "when": "string", "outcome": "string"}]`,
	},
}

// resolvePersona returns the profile for p, or the default one for unknown ids.
func resolvePersona(p entity.Persona, fallback entity.Persona) *personaProfile {
	if prof, ok := personas[p]; ok {
		return prof
	}
	if prof, ok := personas[fallback]; ok {
		return prof
	}
	return personas[entity.PersonaAnalytical]
}

// slotPurpose returns the instruction for a slot.
func (p *personaProfile) slotPurpose(slot, total int) string {
	pos := positionFor(slot, total)
	if pos == positionGeneral {
		return flowPurposes[flowStage(slot, total)]
	}
	return p.Slots[pos]
}
