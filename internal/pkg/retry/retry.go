package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 100 * time.Millisecond
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"200ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"45s"`
}

// ToRetryOptions builds retry-go options bound to ctx. Retries stop as soon
// as ctx is done.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.LastErrorOnly(true),
	}
}

// WithTimeout derives the per-call deadline used around a retried operation.
func (rc *RetryConfig) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rc.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rc.Timeout)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
