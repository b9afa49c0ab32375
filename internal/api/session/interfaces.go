package session

import (
	"context"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

type SessionUsecase interface {
	StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.SessionDTO, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	NextQuestion(ctx context.Context, sessionID string) (*entity.QuestionDTO, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.SessionDTO, error)
	GoBack(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	GenerateReport(ctx context.Context, sessionID string) (*entity.Report, error)
	Transcript(ctx context.Context, sessionID string) (*entity.TranscriptDTO, error)
	ResetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	StartFollowUpSession(ctx context.Context, parentID, answer string) (*entity.SessionDTO, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
