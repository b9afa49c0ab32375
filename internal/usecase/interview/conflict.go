package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/jsonx"
	"go.uber.org/zap"
)

// conflictQuestion cross-checks recent main answers once per slot. It returns
// a question only when a real tension was found and the question is new.
// Only a failed checkpoint is returned as an error.
func (e *Engine) conflictQuestion(ctx context.Context, s *entity.Session, save Checkpoint) (string, string, error) {
	slot := s.Position
	pairs := mainPairs(s)
	if len(pairs) < 2 || s.ConflictChecked[slot] {
		return "", "", nil
	}

	// Marked before the call so a failed or retried turn never checks twice.
	if s.ConflictChecked == nil {
		s.ConflictChecked = make(map[int]bool)
	}
	s.ConflictChecked[slot] = true
	if save != nil {
		s.UpdatedAt = e.now()
		if err := save(ctx, s); err != nil {
			return "", "", fmt.Errorf("store conflict check mark: %w", err)
		}
	}

	p := e.persona(s)
	text, err := e.gen.Generate(ctx, entity.GenerateRequest{
		System:      systemPrompt(s, p),
		User:        conflictPrompt(s, lastN(pairs, e.cfg.ConflictWindow)),
		Temperature: e.cfg.ConflictTemperature,
	})
	if err != nil {
		ctxzap.Warn(ctx, "conflict check failed", zap.Error(err))
		e.trace(s, "conflict_error", slot, err.Error())
		return "", "", nil
	}

	res, ok := jsonx.Decode[entity.ConflictCheckResult](text)
	if !ok {
		ctxzap.Warn(ctx, "conflict check returned malformed output")
		e.trace(s, "conflict_error", slot, entity.ErrMalformedOutput.Error())
		return "", "", nil
	}

	question := cleanQuestion(res.Question)
	if !res.HasConflict || question == "" {
		e.trace(s, "conflict_none", slot, "")
		return "", "", nil
	}
	if e.scorer.IsSimilarToAny(question, askedQuestions(s)) {
		e.trace(s, "conflict_duplicate", slot, res.Summary)
		return "", "", nil
	}

	e.trace(s, "conflict_found", slot, strings.TrimSpace(res.Summary))
	ctxzap.Info(ctx, "conflict between answers detected", zap.String("summary", res.Summary))
	return question, "conflict", nil
}
