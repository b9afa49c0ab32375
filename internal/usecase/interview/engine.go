package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/logger"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/quality"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/textsim"
	"go.uber.org/zap"
)

// Engine runs the adaptive interview over a single *entity.Session per call.
// It keeps no per-session state; callers serialize turns of one session.
type Engine struct {
	cfg        config.EngineConfig
	gen        Generator
	scorer     *textsim.Scorer
	classifier *quality.Classifier
	now        func() time.Time
}

func NewEngine(cfg config.EngineConfig, gen Generator) *Engine {
	return &Engine{
		cfg:        cfg,
		gen:        gen,
		scorer:     textsim.NewScorer(cfg.SimilarityThreshold),
		classifier: quality.NewClassifier(quality.Profile(cfg.Strictness), cfg.LenientMinLength, cfg.StrictMinLength),
		now:        time.Now,
	}
}

// Checkpoint stores the session in the middle of a turn.
type Checkpoint func(ctx context.Context, s *entity.Session) error

type TurnOption func(*turnOptions)

type turnOptions struct {
	checkpoint Checkpoint
}

// WithCheckpoint makes NextQuestion store the per-slot conflict mark before
// the cross-check is sent. A failed store aborts the turn without calling
// the generator.
func WithCheckpoint(save Checkpoint) TurnOption {
	return func(o *turnOptions) {
		o.checkpoint = save
	}
}

// NextQuestion returns the question to show for the current slot, generating
// it on first entry. Repeated calls return the same text.
func (e *Engine) NextQuestion(ctx context.Context, s *entity.Session, opts ...TurnOption) (string, error) {
	if s.Position >= s.TargetCount {
		return "", entity.ErrInterviewComplete
	}
	if s.Probe != nil {
		return s.Probe.Question, nil
	}
	if s.Position < len(s.Questions) {
		return s.Questions[s.Position], nil
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", s.ID), zap.Int("slot", s.Position))
	p := e.persona(s)

	var o turnOptions
	for _, opt := range opts {
		opt(&o)
	}

	question, source, err := e.conflictQuestion(ctx, s, o.checkpoint)
	if err != nil {
		return "", err
	}
	if question == "" {
		question, source = e.slotQuestion(ctx, s, p)
	}

	s.Questions = append(s.Questions, question)
	e.trace(s, "question", s.Position, source)
	s.UpdatedAt = e.now()

	ctxzap.Info(ctx, "question generated", zap.String("source", source))
	return question, nil
}

// SubmitAnswer classifies the answer to the pending question and either asks
// a follow-up or accepts it and advances.
func (e *Engine) SubmitAnswer(ctx context.Context, s *entity.Session, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return entity.ErrEmptyAnswer
	}
	if s.Position >= s.TargetCount {
		return entity.ErrInterviewComplete
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", s.ID), zap.Int("slot", s.Position))
	now := e.now()

	if s.Probe != nil {
		s.Answers = append(s.Answers, entity.AnswerRecord{
			Question:  s.Probe.Question,
			Answer:    answer,
			Kind:      entity.AnswerKindMain,
			MainIndex: s.Position,
			CreatedAt: now,
		})
		e.trace(s, "probe_answered", s.Position, string(s.Probe.Subkind))
		s.Probe = nil
		e.advance(ctx, s)
		return nil
	}

	if s.Position >= len(s.Questions) {
		return entity.ErrNoPendingQuestion
	}
	question := s.Questions[s.Position]

	var subkind entity.AnswerSubkind
	switch e.classifier.Classify(answer) {
	case quality.VerdictConfused:
		subkind = entity.AnswerSubkindReframe
	case quality.VerdictTooShort:
		subkind = entity.AnswerSubkindShort
	default:
		s.Answers = append(s.Answers, entity.AnswerRecord{
			Question:  question,
			Answer:    answer,
			Kind:      entity.AnswerKindMain,
			MainIndex: s.Position,
			CreatedAt: now,
		})
		e.advance(ctx, s)
		return nil
	}

	// The follow-up is built before any state changes.
	followUp := e.probeQuestion(ctx, s, subkind, question, answer)

	s.Answers = append(s.Answers, entity.AnswerRecord{
		Question:  question,
		Answer:    answer,
		Kind:      entity.AnswerKindProbe,
		Subkind:   subkind,
		MainIndex: s.Position,
		CreatedAt: now,
	})
	s.Probe = &entity.ProbeState{
		Question:  followUp,
		Subkind:   subkind,
		MainIndex: s.Position,
	}
	s.UpdatedAt = now

	ctxzap.Info(ctx, "answer needs follow-up", zap.String("subkind", string(subkind)))
	return nil
}

// GoBack pops the latest answer record and rewinds to its slot.
func (e *Engine) GoBack(ctx context.Context, s *entity.Session) error {
	if len(s.Answers) == 0 {
		return entity.ErrNothingToUndo
	}

	last := s.Answers[len(s.Answers)-1]
	s.Answers = s.Answers[:len(s.Answers)-1]

	if s.Probe != nil {
		s.RetiredQuestions = append(s.RetiredQuestions, s.Probe.Question)
	}
	if last.Kind == entity.AnswerKindMain &&
		last.MainIndex < len(s.Questions) && last.Question != s.Questions[last.MainIndex] {
		s.RetiredQuestions = append(s.RetiredQuestions, last.Question)
	}

	s.Probe = nil
	s.Position = last.MainIndex
	s.Report = nil
	s.Status = entity.SessionStatusInterviewing
	if mains := s.MainAnswerCount(); s.SummarizedCount > mains {
		s.SummarizedCount = mains
	}
	e.trace(s, "go_back", last.MainIndex, string(last.Kind))
	s.UpdatedAt = e.now()

	ctxzap.Info(ctx, "rewound interview",
		zap.String("session_id", s.ID),
		zap.Int("slot", s.Position),
		zap.String("popped_kind", string(last.Kind)),
	)
	return nil
}

// GenerateReport builds the final report once every slot is accepted. An
// existing report is returned as is.
func (e *Engine) GenerateReport(ctx context.Context, s *entity.Session) (*entity.Report, error) {
	if !s.IsComplete() {
		return nil, fmt.Errorf("%w: %d of %d answered", entity.ErrInterviewIncomplete, s.Position, s.TargetCount)
	}
	if s.Report != nil {
		return s.Report, nil
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", s.ID))
	report := e.buildReport(ctx, s, e.persona(s))

	s.Report = report
	s.Status = entity.SessionStatusDone
	s.UpdatedAt = e.now()
	return report, nil
}

// NormalizeQuestionCount clamps a requested question count to the configured
// range, using the default when unset.
func (e *Engine) NormalizeQuestionCount(n int) int {
	if n <= 0 {
		return e.cfg.DefaultQuestions
	}
	return min(max(n, e.cfg.MinQuestions), e.cfg.MaxQuestions)
}

func (e *Engine) advance(ctx context.Context, s *entity.Session) {
	s.Position++
	if s.Position >= s.TargetCount {
		s.Status = entity.SessionStatusReadyForReport
	}
	e.summarize(ctx, s)
	s.UpdatedAt = e.now()
}

func (e *Engine) persona(s *entity.Session) *personaProfile {
	return resolvePersona(s.Persona, entity.Persona(e.cfg.DefaultPersona))
}

// mainPairs returns one question/answer pair per accepted slot. Answers given
// to a follow-up are joined with the poor first answer of the same slot.
func mainPairs(s *entity.Session) []entity.QuestionWithAnswer {
	pairs := make([]entity.QuestionWithAnswer, 0, s.Position)
	var pending []string

	for _, r := range s.Answers {
		pending = append(pending, r.Answer)
		if r.Kind != entity.AnswerKindMain {
			continue
		}
		q := r.Question
		if r.MainIndex < len(s.Questions) {
			q = s.Questions[r.MainIndex]
		}
		pairs = append(pairs, entity.QuestionWithAnswer{
			Slot:     r.MainIndex,
			Question: q,
			Answer:   strings.Join(pending, " / "),
		})
		pending = nil
	}
	return pairs
}

// askedQuestions is every question the user has been shown in this session.
func askedQuestions(s *entity.Session) []string {
	asked := make([]string, 0, len(s.Questions)+len(s.Answers)+len(s.RetiredQuestions)+1)
	asked = append(asked, s.Questions...)
	for _, r := range s.Answers {
		if r.Kind == entity.AnswerKindMain && (r.MainIndex >= len(s.Questions) || r.Question != s.Questions[r.MainIndex]) {
			asked = append(asked, r.Question)
		}
	}
	asked = append(asked, s.RetiredQuestions...)
	if s.Probe != nil {
		asked = append(asked, s.Probe.Question)
	}
	return asked
}

func lastN[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func (e *Engine) trace(s *entity.Session, event string, slot int, detail string) {
	s.Debug = append(s.Debug, entity.DebugEntry{
		Event:     event,
		Slot:      slot,
		Detail:    detail,
		CreatedAt: e.now(),
	})
	if limit := e.cfg.DebugTraceLimit; limit > 0 && len(s.Debug) > limit {
		s.Debug = append([]entity.DebugEntry(nil), s.Debug[len(s.Debug)-limit:]...)
	}
}
