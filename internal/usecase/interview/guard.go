package interview

import (
	"context"
	"errors"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"go.uber.org/zap"
)

type guardStatus string

const (
	guardAccepted     guardStatus = "accepted"
	guardRetried      guardStatus = "retried"
	guardRejectedKept guardStatus = "rejected_kept"
	guardFallback     guardStatus = "fallback"
)

// guarded describes one "generate, validate, retry once, else fallback" step.
type guarded[T any] struct {
	stage   string
	request entity.GenerateRequest
	// retry builds the second request from the rejected text and its
	// problems. A nil retry means a rejected value goes straight to fallback.
	retry    func(rejected string, problems []string) entity.GenerateRequest
	parse    func(text string) (T, bool)
	validate func(T) []string
	fallback func() T
	// keepRejected returns the last parsed value instead of the fallback
	// when validation still fails after the retry.
	keepRejected bool
}

type guardResult[T any] struct {
	Value    T
	Status   guardStatus
	Problems []string
	Calls    int
	Err      error
}

func runGuarded[T any](ctx context.Context, gen Generator, g guarded[T]) guardResult[T] {
	res := guardResult[T]{}

	first, problems, text, err := g.attempt(ctx, gen, g.request, &res)
	if err != nil {
		return g.useFallback(ctx, res, err)
	}
	if len(problems) == 0 {
		res.Value, res.Status = first, guardAccepted
		return res
	}

	if g.retry == nil {
		return g.rejected(ctx, res, first, problems)
	}

	ctxzap.Debug(ctx, "generation rejected, retrying",
		zap.String("stage", g.stage),
		zap.Strings("problems", problems),
	)

	second, problems2, _, err := g.attempt(ctx, gen, g.retry(text, problems), &res)
	if err != nil {
		// The first draft is still usable when the caller allows it.
		if g.keepRejected {
			res.Err = err
			return g.rejected(ctx, res, first, problems)
		}
		return g.useFallback(ctx, res, err)
	}
	if len(problems2) == 0 {
		res.Value, res.Status = second, guardRetried
		return res
	}
	return g.rejected(ctx, res, second, problems2)
}

func (g guarded[T]) attempt(
	ctx context.Context, gen Generator, req entity.GenerateRequest, res *guardResult[T],
) (T, []string, string, error) {
	var zero T

	res.Calls++
	text, err := gen.Generate(ctx, req)
	if err != nil {
		return zero, nil, "", err
	}
	if strings.TrimSpace(text) == "" {
		return zero, nil, "", entity.ErrEmptyGeneration
	}

	v, ok := g.parse(text)
	if !ok {
		return zero, nil, text, entity.ErrMalformedOutput
	}

	var problems []string
	if g.validate != nil {
		problems = g.validate(v)
	}
	return v, problems, text, nil
}

func (g guarded[T]) rejected(ctx context.Context, res guardResult[T], v T, problems []string) guardResult[T] {
	res.Problems = problems
	if g.keepRejected {
		res.Value, res.Status = v, guardRejectedKept
		ctxzap.Warn(ctx, "keeping rejected generation",
			zap.String("stage", g.stage),
			zap.Strings("problems", problems),
		)
		return res
	}
	return g.useFallback(ctx, res, errors.New(strings.Join(problems, "; ")))
}

func (g guarded[T]) useFallback(ctx context.Context, res guardResult[T], cause error) guardResult[T] {
	ctxzap.Warn(ctx, "generation failed, using fallback",
		zap.String("stage", g.stage),
		zap.Int("calls", res.Calls),
		zap.Error(cause),
	)
	res.Value, res.Status, res.Err = g.fallback(), guardFallback, cause
	return res
}
