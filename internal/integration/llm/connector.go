package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/integration/common"
	pkgRetry "github.com/ywlim06-debug/dolddari-coach/internal/pkg/retry"
	pkghttp "github.com/ywlim06-debug/dolddari-coach/pkg/http"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI compatible chat completions endpoint.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	if cfg.Retry == (pkgRetry.RetryConfig{}) {
		cfg.Retry = *pkgRetry.DefaultRetryConfig()
	}
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Generate returns the first non-empty completion. Models are tried in the
// configured order; each one gets its own retry budget for transient errors.
func (c *Connector) Generate(ctx context.Context, req entity.GenerateRequest) (string, error) {
	if len(c.config.Models) == 0 {
		return "", fmt.Errorf("%w: no models configured", entity.ErrInvalidParameter)
	}

	var errs []error
	for _, model := range c.config.Models {
		text, err := c.generateWithModel(ctx, model, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("generate: %w", ctx.Err())
		}

		ctxzap.Warn(ctx, "model failed, trying next",
			zap.String("model", model),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
	}

	return "", fmt.Errorf("all models failed: %w", errors.Join(errs...))
}

func (c *Connector) generateWithModel(ctx context.Context, model string, req entity.GenerateRequest) (string, error) {
	ctx, cancel := c.config.Retry.WithTimeout(ctx)
	defer cancel()

	body := entity.LLMChatRequest{
		Model: model,
		Messages: []entity.ChatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	opts := append(c.config.Retry.ToRetryOptions(ctx),
		retry.RetryIf(pkghttp.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Debug(ctx, "retrying chat completion",
				zap.String("model", model),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	var resp entity.LLMChatResponse
	err := retry.Do(func() error {
		resp = entity.LLMChatResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint, body, &resp)
	}, opts...)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", entity.ErrEmptyGeneration
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", entity.ErrEmptyGeneration
	}

	ctxzap.Debug(ctx, "chat completion received",
		zap.String("model", model),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
		zap.Int("chars", len(text)),
	)
	return text, nil
}
