package session

import (
	"context"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/usecase/interview"
)

// InterviewEngine drives one interview turn over a loaded session.
type InterviewEngine interface {
	NextQuestion(ctx context.Context, s *entity.Session, opts ...interview.TurnOption) (string, error)
	SubmitAnswer(ctx context.Context, s *entity.Session, answer string) error
	GoBack(ctx context.Context, s *entity.Session) error
	GenerateReport(ctx context.Context, s *entity.Session) (*entity.Report, error)
	NormalizeQuestionCount(n int) int
}
