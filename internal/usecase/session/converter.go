package session

import "github.com/ywlim06-debug/dolddari-coach/internal/entity"

// pendingQuestion returns the question currently waiting for an answer, if
// it has been generated already.
func pendingQuestion(s *entity.Session) *entity.QuestionDTO {
	if s.Probe != nil {
		return &entity.QuestionDTO{
			SessionID:  s.ID,
			Slot:       s.Probe.MainIndex,
			TotalSlots: s.TargetCount,
			Question:   s.Probe.Question,
			IsFollowUp: true,
			Subkind:    s.Probe.Subkind,
		}
	}
	if s.Position < s.TargetCount && s.Position < len(s.Questions) {
		return &entity.QuestionDTO{
			SessionID:  s.ID,
			Slot:       s.Position,
			TotalSlots: s.TargetCount,
			Question:   s.Questions[s.Position],
		}
	}
	return nil
}

func sessionToDTO(s *entity.Session) *entity.SessionDTO {
	return &entity.SessionDTO{
		ID:           s.ID,
		ParentID:     s.ParentID,
		Status:       s.Status,
		Title:        s.Title,
		Category:     s.Category,
		DecisionType: s.DecisionType,
		Persona:      s.Persona,
		Language:     s.Language,
		Goal:         s.Goal,
		Options:      s.Options,
		TargetCount:  s.TargetCount,
		Position:     s.Position,
		Pending:      pendingQuestion(s),
		HasReport:    s.Report != nil,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// sessionToTranscript lists every answer record in the order it was given.
func sessionToTranscript(s *entity.Session) *entity.TranscriptDTO {
	items := make([]entity.TranscriptItem, 0, len(s.Answers))
	for _, a := range s.Answers {
		items = append(items, entity.TranscriptItem{
			Slot:       a.MainIndex,
			Question:   a.Question,
			Answer:     a.Answer,
			Kind:       a.Kind,
			Subkind:    a.Subkind,
			AnsweredAt: a.CreatedAt,
		})
	}

	return &entity.TranscriptDTO{
		SessionID: s.ID,
		Summary:   s.SummaryText,
		Items:     items,
	}
}
