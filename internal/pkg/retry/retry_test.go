package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
)

func TestToRetryOptions(t *testing.T) {
	cfg := RetryConfig{Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := retry.Do(func() error {
		calls++
		return errors.New("still failing")
	}, cfg.ToRetryOptions(context.Background())...)

	if calls != defaultAttempts {
		t.Errorf("calls = %d, want %d", calls, defaultAttempts)
	}
	if err == nil || err.Error() != "still failing" {
		t.Errorf("error = %v, want last error only", err)
	}
}

func TestToRetryOptionsStopsOnCancel(t *testing.T) {
	cfg := RetryConfig{Attempts: 10, Delay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_ = retry.Do(func() error {
		calls++
		cancel()
		return errors.New("fail")
	}, cfg.ToRetryOptions(ctx)...)

	if calls != 1 {
		t.Errorf("calls = %d after cancel, want 1", calls)
	}
}

func TestWithTimeout(t *testing.T) {
	cfg := RetryConfig{Timeout: time.Minute}
	ctx, cancel := cfg.WithTimeout(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline")
	}

	none := RetryConfig{}
	ctx2, cancel2 := none.WithTimeout(context.Background())
	defer cancel2()
	if _, ok := ctx2.Deadline(); ok {
		t.Error("zero timeout should not set a deadline")
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.Attempts != defaultAttempts || cfg.Delay != defaultDelay || cfg.MaxDelay != defaultMaxDelay {
		t.Errorf("DefaultRetryConfig() = %+v", cfg)
	}
}
