package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hrygo/switchboard/plugin/ai/timeout"
)

// ErrPollExhausted is returned when a job is still pending after the last attempt.
var ErrPollExhausted = errors.New("remote job still pending after max poll attempts")

// PollConfig bounds a polling loop.
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollConfig returns the polling bounds used for remote module jobs.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxAttempts: timeout.RemotePollAttempts,
		Interval:    timeout.RemotePollInterval,
	}
}

// Poll calls fn until it reports done, returns an error, ctx ends, or
// MaxAttempts calls were made. There is no wait before the first attempt.
func Poll[T any](ctx context.Context, cfg PollConfig, fn func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if i > 0 && cfg.Interval > 0 {
			timer := time.NewTimer(cfg.Interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		v, done, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return v, nil
		}
	}
	return zero, fmt.Errorf("%w (%d attempts)", ErrPollExhausted, attempts)
}
