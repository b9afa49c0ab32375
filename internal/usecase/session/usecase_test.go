package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/validator"
	"github.com/ywlim06-debug/dolddari-coach/internal/usecase/interview"
	"go.uber.org/zap"
)

// memRepo stores sessions as JSON so every load is an independent copy.
// Updates are checked against the stored version like the SQL backends do.
type memRepo struct {
	mu       sync.Mutex
	docs     map[string][]byte
	versions map[string]int64
	creates  int
	updates  int
	attempts int
	// failAt makes the update attempt with this number fail.
	failAt int
}

var errStorageDown = errors.New("storage unavailable")

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[string][]byte), versions: make(map[string]int64)}
}

func (r *memRepo) CreateSession(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.docs[s.ID] = doc
	r.versions[s.ID] = s.Version
	r.creates++
	return nil
}

func (r *memRepo) GetSessionByID(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	var s entity.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, err
	}
	s.Version = r.versions[id]
	return &s, nil
}

func (r *memRepo) UpdateSession(ctx context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.attempts == r.failAt {
		return errStorageDown
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	current, ok := r.versions[s.ID]
	if !ok {
		return entity.ErrSessionNotFound
	}
	if current != s.Version {
		return entity.ErrConcurrentUpdate
	}
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.docs[s.ID] = doc
	r.versions[s.ID] = current + 1
	s.Version = current + 1
	r.updates++
	return nil
}

func (r *memRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return entity.ErrSessionNotFound
	}
	delete(r.docs, id)
	return nil
}

type offlineGenerator struct{}

func (offlineGenerator) Generate(context.Context, entity.GenerateRequest) (string, error) {
	return "", errors.New("generator offline")
}

// conflictCounter counts cross-check prompts and fails every request.
type conflictCounter struct {
	mu     sync.Mutex
	checks int
}

func (g *conflictCounter) Generate(_ context.Context, req entity.GenerateRequest) (string, error) {
	if strings.Contains(req.User, `"has_conflict"`) {
		g.mu.Lock()
		g.checks++
		g.mu.Unlock()
	}
	return "", errors.New("generator offline")
}

func (g *conflictCounter) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checks
}

func newTestUsecase() (*SessionUsecase, *memRepo) {
	return newTestUsecaseWith(offlineGenerator{})
}

func newTestUsecaseWith(gen interview.Generator) (*SessionUsecase, *memRepo) {
	cfg := config.DefaultEngineConfig()
	repo := newMemRepo()
	uc := NewUsecase(repo, interview.NewEngine(cfg, gen), validator.NewSessionValidator(cfg), cfg, zap.NewNop())
	return uc, repo
}

var detailedAnswers = []string{
	"I have wanted to move since 2023 because my parents live in Busan and need help.",
	"The salary drop would be about 15 percent, which we can absorb for a year or two.",
	"My partner would need to find work there, and that worries me more than money.",
}

func startSession(t *testing.T, uc *SessionUsecase, count int) string {
	t.Helper()
	dto, err := uc.StartSession(context.Background(), &entity.StartSessionRequest{
		Title:         "Move back home",
		Goal:          "Sort out what matters to me",
		Persona:       entity.PersonaAction,
		QuestionCount: count,
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	return dto.ID
}

func TestStartSessionDefaults(t *testing.T) {
	uc, repo := newTestUsecase()

	dto, err := uc.StartSession(context.Background(), &entity.StartSessionRequest{
		Title:   " Job offer ",
		Goal:    "Understand my options",
		Options: []string{" stay ", "", "leave"},
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if dto.Persona != entity.PersonaAnalytical || dto.Language != "en" || dto.Category != defaultCategory {
		t.Errorf("defaults not applied: %+v", dto)
	}
	if dto.TargetCount != 7 || dto.Status != entity.SessionStatusInterviewing {
		t.Errorf("target = %d, status = %s", dto.TargetCount, dto.Status)
	}
	if dto.Title != "Job offer" || len(dto.Options) != 2 {
		t.Errorf("setup not cleaned: %q %v", dto.Title, dto.Options)
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d", repo.creates)
	}
}

func TestStartSessionRejectsInvalidSetup(t *testing.T) {
	uc, repo := newTestUsecase()

	_, err := uc.StartSession(context.Background(), &entity.StartSessionRequest{Title: "x"})
	if !errors.Is(err, entity.ErrMissingField) {
		t.Fatalf("error = %v, want ErrMissingField", err)
	}
	if repo.creates != 0 {
		t.Error("invalid session was stored")
	}
}

func TestInterviewFlowThroughUsecase(t *testing.T) {
	ctx := context.Background()
	uc, repo := newTestUsecase()
	id := startSession(t, uc, 3)

	for i, answer := range detailedAnswers {
		q, err := uc.NextQuestion(ctx, id)
		if err != nil {
			t.Fatalf("NextQuestion(%d) error = %v", i, err)
		}
		if q.Slot != i || q.TotalSlots != 3 || q.IsFollowUp || q.Question == "" {
			t.Fatalf("question %d = %+v", i, q)
		}

		updates := repo.updates
		again, err := uc.NextQuestion(ctx, id)
		if err != nil || again.Question != q.Question {
			t.Fatalf("NextQuestion not idempotent: %+v, %v", again, err)
		}
		if repo.updates != updates {
			t.Error("repeated NextQuestion wrote the session")
		}

		if _, err := uc.SubmitAnswer(ctx, id, answer); err != nil {
			t.Fatalf("SubmitAnswer(%d) error = %v", i, err)
		}
	}

	if _, err := uc.NextQuestion(ctx, id); !errors.Is(err, entity.ErrInterviewComplete) {
		t.Errorf("NextQuestion after last slot error = %v", err)
	}

	report, err := uc.GenerateReport(ctx, id)
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	if !report.Fallback || report.Document.FollowUpQuestion == "" {
		t.Errorf("report = %+v", report)
	}

	dto, err := uc.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if dto.Status != entity.SessionStatusDone || !dto.HasReport || dto.Pending != nil {
		t.Errorf("session after report = %+v", dto)
	}

	transcript, err := uc.Transcript(ctx, id)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if len(transcript.Items) != 3 || transcript.Items[2].Answer != detailedAnswers[2] {
		t.Errorf("transcript = %+v", transcript.Items)
	}
}

func TestSubmitAnswerFollowUp(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase()
	id := startSession(t, uc, 3)

	if _, err := uc.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion() error = %v", err)
	}
	dto, err := uc.SubmitAnswer(ctx, id, "not sure")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if dto.Pending == nil || !dto.Pending.IsFollowUp || dto.Position != 0 {
		t.Fatalf("expected a follow-up question, got %+v", dto)
	}

	back, err := uc.GoBack(ctx, id)
	if err != nil {
		t.Fatalf("GoBack() error = %v", err)
	}
	if back.Pending == nil || back.Pending.IsFollowUp {
		t.Errorf("after go back pending = %+v", back.Pending)
	}
}

func TestSubmitEmptyAnswerStoresNothing(t *testing.T) {
	ctx := context.Background()
	uc, repo := newTestUsecase()
	id := startSession(t, uc, 3)
	if _, err := uc.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion() error = %v", err)
	}

	updates := repo.updates
	if _, err := uc.SubmitAnswer(ctx, id, "   "); !errors.Is(err, entity.ErrEmptyAnswer) {
		t.Fatalf("error = %v, want ErrEmptyAnswer", err)
	}
	if repo.updates != updates {
		t.Error("empty answer was stored")
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase()

	if _, err := uc.NextQuestion(ctx, "missing"); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Errorf("NextQuestion error = %v", err)
	}
	if err := uc.DeleteSession(ctx, "missing"); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Errorf("DeleteSession error = %v", err)
	}
	if uc.locks.size() != 0 {
		t.Errorf("lock entries leaked: %d", uc.locks.size())
	}
}

func TestResetSession(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase()
	id := startSession(t, uc, 3)

	_, _ = uc.NextQuestion(ctx, id)
	_, _ = uc.SubmitAnswer(ctx, id, detailedAnswers[0])

	dto, err := uc.ResetSession(ctx, id)
	if err != nil {
		t.Fatalf("ResetSession() error = %v", err)
	}
	if dto.Position != 0 || dto.Pending != nil || dto.TargetCount != 3 || dto.Title != "Move back home" {
		t.Errorf("reset session = %+v", dto)
	}
}

func TestStartFollowUpSession(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase()
	id := startSession(t, uc, 3)

	if _, err := uc.StartFollowUpSession(ctx, id, "an answer"); !errors.Is(err, entity.ErrNoFollowUpQuestion) {
		t.Fatalf("error before report = %v", err)
	}

	for _, answer := range detailedAnswers {
		_, _ = uc.NextQuestion(ctx, id)
		if _, err := uc.SubmitAnswer(ctx, id, answer); err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
	}
	if _, err := uc.GenerateReport(ctx, id); err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	child, err := uc.StartFollowUpSession(ctx, id, "I would ask my partner first")
	if err != nil {
		t.Fatalf("StartFollowUpSession() error = %v", err)
	}
	if child.ParentID == nil || *child.ParentID != id || child.ID == id {
		t.Errorf("child ids = %s / %v", child.ID, child.ParentID)
	}
	if child.Persona != entity.PersonaAction || child.TargetCount != 3 || child.Position != 0 {
		t.Errorf("child setup = %+v", child)
	}

	stored, err := uc.sessionRepo.GetSessionByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetSessionByID() error = %v", err)
	}
	if !strings.Contains(stored.Situation, "I would ask my partner first") {
		t.Errorf("situation = %q", stored.Situation)
	}
}

func TestConcurrentNextQuestionGeneratesOnce(t *testing.T) {
	ctx := context.Background()
	uc, repo := newTestUsecase()
	id := startSession(t, uc, 5)

	var wg sync.WaitGroup
	questions := make([]string, 16)
	for i := range questions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := uc.NextQuestion(ctx, id)
			if err != nil {
				t.Errorf("NextQuestion() error = %v", err)
				return
			}
			questions[i] = q.Question
		}(i)
	}
	wg.Wait()

	for _, q := range questions[1:] {
		if q != questions[0] {
			t.Fatalf("different questions for one slot: %q vs %q", q, questions[0])
		}
	}
	if repo.updates != 1 {
		t.Errorf("updates = %d, want 1", repo.updates)
	}
	if uc.locks.size() != 0 {
		t.Errorf("lock entries leaked: %d", uc.locks.size())
	}
}

// answerSlots moves the session past n slots with detailed answers.
func answerSlots(t *testing.T, uc *SessionUsecase, id string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		if _, err := uc.NextQuestion(ctx, id); err != nil {
			t.Fatalf("NextQuestion(%d) error = %v", i, err)
		}
		if _, err := uc.SubmitAnswer(ctx, id, detailedAnswers[i]); err != nil {
			t.Fatalf("SubmitAnswer(%d) error = %v", i, err)
		}
	}
}

func TestConflictCheckSurvivesFailedTurnSave(t *testing.T) {
	ctx := context.Background()
	gen := &conflictCounter{}
	uc, repo := newTestUsecaseWith(gen)
	id := startSession(t, uc, 4)
	answerSlots(t, uc, id, 2)

	// The mark is stored first, then the final save of the turn fails.
	repo.failAt = repo.attempts + 2
	if _, err := uc.NextQuestion(ctx, id); !errors.Is(err, errStorageDown) {
		t.Fatalf("NextQuestion() error = %v, want storage failure", err)
	}
	if got := gen.count(); got != 1 {
		t.Fatalf("conflict checks = %d, want 1", got)
	}

	q, err := uc.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("retried NextQuestion() error = %v", err)
	}
	if q.Slot != 2 || q.Question == "" {
		t.Errorf("question = %+v", q)
	}
	if got := gen.count(); got != 1 {
		t.Errorf("conflict checks for slot 2 after retry = %d, want 1", got)
	}
}

func TestConflictCheckSkippedWhenMarkCannotBeStored(t *testing.T) {
	ctx := context.Background()
	gen := &conflictCounter{}
	uc, repo := newTestUsecaseWith(gen)
	id := startSession(t, uc, 4)
	answerSlots(t, uc, id, 2)

	repo.failAt = repo.attempts + 1
	if _, err := uc.NextQuestion(ctx, id); !errors.Is(err, errStorageDown) {
		t.Fatalf("NextQuestion() error = %v, want storage failure", err)
	}
	if got := gen.count(); got != 0 {
		t.Fatalf("conflict checks = %d, want 0 before the mark is stored", got)
	}

	if _, err := uc.NextQuestion(ctx, id); err != nil {
		t.Fatalf("retried NextQuestion() error = %v", err)
	}
	if got := gen.count(); got != 1 {
		t.Errorf("conflict checks = %d, want 1", got)
	}
}

func TestTurnIsStoredAfterRequestContextEnds(t *testing.T) {
	uc, repo := newTestUsecase()
	id := startSession(t, uc, 3)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := uc.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion() error = %v", err)
	}

	// The engine runs offline, so cancelling only affects the save.
	cancel()
	if _, err := uc.SubmitAnswer(ctx, id, detailedAnswers[0]); err != nil {
		t.Fatalf("SubmitAnswer() on a cancelled context error = %v", err)
	}
	stored, err := repo.GetSessionByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSessionByID() error = %v", err)
	}
	if stored.Position != 1 {
		t.Errorf("stored position = %d, want 1", stored.Position)
	}
}

func TestStaleTurnIsRejected(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultEngineConfig()
	repo := newMemRepo()
	engine := interview.NewEngine(cfg, offlineGenerator{})
	// Two use cases over one store behave like two API replicas.
	first := NewUsecase(repo, engine, validator.NewSessionValidator(cfg), cfg, zap.NewNop())
	id := startSession(t, first, 3)
	if _, err := first.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion() error = %v", err)
	}

	stale, err := repo.GetSessionByID(ctx, id)
	if err != nil {
		t.Fatalf("GetSessionByID() error = %v", err)
	}
	if _, err := first.SubmitAnswer(ctx, id, detailedAnswers[0]); err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}

	if err := engine.SubmitAnswer(ctx, stale, detailedAnswers[1]); err != nil {
		t.Fatalf("engine.SubmitAnswer() error = %v", err)
	}
	if err := repo.UpdateSession(ctx, stale); !errors.Is(err, entity.ErrConcurrentUpdate) {
		t.Fatalf("stale UpdateSession() error = %v, want ErrConcurrentUpdate", err)
	}

	transcript, err := first.Transcript(ctx, id)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if len(transcript.Items) != 1 || transcript.Items[0].Answer != detailedAnswers[0] {
		t.Errorf("transcript = %+v", transcript.Items)
	}
}
