package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/logger"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/validator"
	"github.com/ywlim06-debug/dolddari-coach/internal/repository"
	"github.com/ywlim06-debug/dolddari-coach/internal/usecase/interview"
	"go.uber.org/zap"
)

const defaultCategory = "general"

// SessionUsecase implements session business logic
type SessionUsecase struct {
	sessionRepo repository.SessionRepository
	engine      InterviewEngine
	validator   *validator.Validator
	cfg         config.EngineConfig
	locks       *keyedMutex
	now         func() time.Time
	logger      *zap.Logger
}

// NewUsecase creates a new session use case
func NewUsecase(
	sessionRepo repository.SessionRepository,
	engine InterviewEngine,
	validator *validator.Validator,
	cfg config.EngineConfig,
	logger *zap.Logger,
) *SessionUsecase {
	return &SessionUsecase{
		sessionRepo: sessionRepo,
		engine:      engine,
		validator:   validator,
		cfg:         cfg,
		locks:       newKeyedMutex(),
		now:         time.Now,
		logger:      logger,
	}
}

// StartSession validates the setup and stores a fresh session
func (uc *SessionUsecase) StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.SessionDTO, error) {
	if err := uc.validator.ValidateStartSession(req); err != nil {
		return nil, err
	}

	now := uc.now()
	s := &entity.Session{
		ID:           uuid.New().String(),
		Category:     strings.TrimSpace(req.Category),
		DecisionType: strings.TrimSpace(req.DecisionType),
		Persona:      req.Persona,
		Language:     strings.ToLower(strings.TrimSpace(req.Language)),
		Title:        strings.TrimSpace(req.Title),
		Situation:    strings.TrimSpace(req.Situation),
		Goal:         strings.TrimSpace(req.Goal),
		Options:      cleanOptions(req.Options),
		TargetCount:  uc.engine.NormalizeQuestionCount(req.QuestionCount),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.Category == "" {
		s.Category = defaultCategory
	}
	if s.Persona == "" {
		s.Persona = entity.Persona(uc.cfg.DefaultPersona)
	}
	if s.Language == "" {
		s.Language = uc.cfg.DefaultLanguage
	}
	s.ResetProgress()

	if err := uc.sessionRepo.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session started",
		zap.String("session_id", s.ID),
		zap.String("persona", string(s.Persona)),
		zap.Int("target_count", s.TargetCount),
	)
	return sessionToDTO(s), nil
}

func (uc *SessionUsecase) GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	s, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sessionToDTO(s), nil
}

// NextQuestion returns the pending question, generating it on first request
func (uc *SessionUsecase) NextQuestion(ctx context.Context, sessionID string) (*entity.QuestionDTO, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "next_question"), zap.String("session_id", sessionID))

	var dto *entity.QuestionDTO
	err := uc.withSession(ctx, sessionID, func(s *entity.Session) (bool, error) {
		before := len(s.Questions)
		if _, err := uc.engine.NextQuestion(ctx, s, interview.WithCheckpoint(uc.save)); err != nil {
			return false, err
		}
		dto = pendingQuestion(s)
		return len(s.Questions) != before, nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SubmitAnswer records an answer to the pending question
func (uc *SessionUsecase) SubmitAnswer(ctx context.Context, sessionID, answer string) (*entity.SessionDTO, error) {
	if err := uc.validator.ValidateAnswer(answer); err != nil {
		return nil, err
	}
	ctx = logger.AddFields(logger.WithAction(ctx, "submit_answer"), zap.String("session_id", sessionID))

	var dto *entity.SessionDTO
	err := uc.withSession(ctx, sessionID, func(s *entity.Session) (bool, error) {
		if err := uc.engine.SubmitAnswer(ctx, s, answer); err != nil {
			return false, err
		}
		dto = sessionToDTO(s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GoBack undoes the latest answer
func (uc *SessionUsecase) GoBack(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "go_back"), zap.String("session_id", sessionID))

	var dto *entity.SessionDTO
	err := uc.withSession(ctx, sessionID, func(s *entity.Session) (bool, error) {
		if err := uc.engine.GoBack(ctx, s); err != nil {
			return false, err
		}
		dto = sessionToDTO(s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GenerateReport builds the report once, later calls return the stored one
func (uc *SessionUsecase) GenerateReport(ctx context.Context, sessionID string) (*entity.Report, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "generate_report"), zap.String("session_id", sessionID))

	var report *entity.Report
	err := uc.withSession(ctx, sessionID, func(s *entity.Session) (bool, error) {
		existing := s.Report != nil
		r, err := uc.engine.GenerateReport(ctx, s)
		if err != nil {
			return false, err
		}
		report = r
		return !existing, nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (uc *SessionUsecase) Transcript(ctx context.Context, sessionID string) (*entity.TranscriptDTO, error) {
	s, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sessionToTranscript(s), nil
}

// ResetSession starts the interview over with the same setup
func (uc *SessionUsecase) ResetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	ctx = logger.AddFields(logger.WithAction(ctx, "reset_session"), zap.String("session_id", sessionID))

	var dto *entity.SessionDTO
	err := uc.withSession(ctx, sessionID, func(s *entity.Session) (bool, error) {
		s.ResetProgress()
		s.UpdatedAt = uc.now()
		dto = sessionToDTO(s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "session reset")
	return dto, nil
}

// StartFollowUpSession opens a new session seeded with the answer to the
// previous report's follow-up question.
func (uc *SessionUsecase) StartFollowUpSession(ctx context.Context, parentID, answer string) (*entity.SessionDTO, error) {
	if err := uc.validator.ValidateAnswer(answer); err != nil {
		return nil, err
	}
	ctx = logger.AddFields(logger.WithAction(ctx, "start_follow_up"), zap.String("parent_id", parentID))

	unlock := uc.locks.Lock(parentID)
	defer unlock()

	parent, err := uc.sessionRepo.GetSessionByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if parent.Report == nil || strings.TrimSpace(parent.Report.Document.FollowUpQuestion) == "" {
		return nil, entity.ErrNoFollowUpQuestion
	}

	now := uc.now()
	child := &entity.Session{
		ID:           uuid.New().String(),
		ParentID:     &parent.ID,
		Category:     parent.Category,
		DecisionType: parent.DecisionType,
		Persona:      parent.Persona,
		Language:     parent.Language,
		Title:        parent.Title,
		Situation:    followUpSituation(parent, strings.TrimSpace(answer)),
		Goal:         parent.Goal,
		Options:      parent.Options,
		TargetCount:  parent.TargetCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	child.ResetProgress()

	if err := uc.sessionRepo.CreateSession(ctx, child); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "follow-up session started", zap.String("session_id", child.ID))
	return sessionToDTO(child), nil
}

func (uc *SessionUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	if err := uc.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	ctxzap.Info(ctx, "session deleted", zap.String("session_id", sessionID))
	return nil
}

// withSession loads the session under its lock, runs fn and stores the
// result when fn reports a change. Nothing is stored when fn fails, apart
// from checkpoints fn made itself.
func (uc *SessionUsecase) withSession(
	ctx context.Context, sessionID string, fn func(s *entity.Session) (bool, error),
) error {
	unlock := uc.locks.Lock(sessionID)
	defer unlock()

	s, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	changed, err := fn(s)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	return uc.save(ctx, s)
}

// save stores s even when the request context is already done, so a turn
// that finished its slow generation is not lost to a client timeout.
func (uc *SessionUsecase) save(ctx context.Context, s *entity.Session) error {
	if err := uc.sessionRepo.UpdateSession(context.WithoutCancel(ctx), s); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func followUpSituation(parent *entity.Session, answer string) string {
	var b strings.Builder
	if parent.Situation != "" {
		b.WriteString(parent.Situation)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Earlier reflection asked: %s\nThe user answered: %s",
		parent.Report.Document.FollowUpQuestion, answer)
	return b.String()
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}
