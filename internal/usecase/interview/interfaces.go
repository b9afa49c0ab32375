package interview

import (
	"context"

	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
)

// Generator is the text-generation collaborator. It returns the full text or
// an error, never a partial result.
type Generator interface {
	Generate(ctx context.Context, req entity.GenerateRequest) (string, error)
}
