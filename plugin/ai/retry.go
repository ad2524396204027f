package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hrygo/switchboard/plugin/ai/timeout"
)

// RetryConfig bounds the retry/backoff wrapper.
type RetryConfig struct {
	InitialBackoff time.Duration // first rate-limit delay, doubled each retry
	MaxBackoffWait time.Duration // cumulative backoff budget
	CallTimeout    time.Duration // per-attempt deadline
	MaxConcurrent  int64         // concurrent upstream calls; 0 means unbounded
}

// DefaultRetryConfig returns the production retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialBackoff: timeout.InitialBackoff,
		MaxBackoffWait: timeout.MaxBackoffWait,
		CallTimeout:    timeout.UpstreamCallTimeout,
		MaxConcurrent:  8,
	}
}

// RetryService retries rate-limited calls with exponential backoff. Any other
// failure is surfaced immediately as an *UpstreamError.
type RetryService struct {
	provider string
	next     LLMService
	cfg      RetryConfig
	sem      *semaphore.Weighted

	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryService wraps next with retry and concurrency bounds.
func NewRetryService(provider string, next LLMService, cfg RetryConfig) *RetryService {
	def := DefaultRetryConfig()
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoffWait < 0 {
		cfg.MaxBackoffWait = 0
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}

	s := &RetryService{
		provider: provider,
		next:     next,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
	if cfg.MaxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return s
}

func (s *RetryService) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var waited time.Duration
	backoff := s.cfg.InitialBackoff

	for attempt := 1; ; attempt++ {
		resp, err := s.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		if waited+backoff > s.cfg.MaxBackoffWait {
			slog.Warn("upstream rate limit persisted, giving up",
				slog.String("provider", s.provider),
				slog.Int("attempts", attempt),
				slog.Duration("waited", waited))
			return nil, err
		}

		slog.Debug("upstream rate limited, retrying",
			slog.String("provider", s.provider),
			slog.Int("attempt", attempt),
			slog.Duration("wait_time", backoff))
		if err := s.sleep(ctx, backoff); err != nil {
			return nil, asUpstream(s.provider, err)
		}
		waited += backoff
		backoff *= 2
	}
}

// attempt runs one bounded call and normalizes its error.
func (s *RetryService) attempt(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, asUpstream(s.provider, err)
		}
		defer s.sem.Release(1)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	resp, err := s.next.Chat(callCtx, req)
	if err == nil {
		return resp, nil
	}

	upErr := asUpstream(s.provider, err)
	// A deadline hit by the per-attempt timer reads as a generic transport
	// failure from most clients.
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && upErr.Kind != KindRateLimit {
		upErr = &UpstreamError{Kind: KindTimeout, Provider: upErr.Provider, StatusCode: upErr.StatusCode, Cause: err}
	}
	if upErr.Provider == "" {
		upErr.Provider = s.provider
	}
	return nil, upErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ LLMService = (*RetryService)(nil)
