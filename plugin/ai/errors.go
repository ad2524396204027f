package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrRateLimited is reported by providers that signal throttling without a status code.
	ErrRateLimited = errors.New("rate limited by provider")
	// ErrEmptyResponse is returned when a completion carries no choices.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ErrorKind classifies upstream failures for retry and response decisions.
type ErrorKind string

const (
	KindRateLimit ErrorKind = "rate_limit"
	KindTimeout   ErrorKind = "timeout"
	KindCanceled  ErrorKind = "canceled"
	KindNetwork   ErrorKind = "network"
	KindMalformed ErrorKind = "malformed"
	KindStatus    ErrorKind = "status"
)

// UpstreamError is the typed failure of a chat-completion call.
type UpstreamError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s upstream %s: %v", e.Provider, e.Kind, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// IsRateLimit reports whether err is a rate-limit signal.
func IsRateLimit(err error) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Kind == KindRateLimit
	}
	return errors.Is(err, ErrRateLimited)
}

// KindOf returns the kind of an upstream failure, or "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return asUpstream("", err).Kind
}

// asUpstream normalizes any error into an *UpstreamError.
func asUpstream(provider string, err error) *UpstreamError {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr
	}

	kind := KindNetwork
	switch {
	case errors.Is(err, ErrRateLimited):
		kind = KindRateLimit
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, ErrEmptyResponse):
		kind = KindMalformed
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
	}
	return &UpstreamError{Kind: kind, Provider: provider, Cause: err}
}

// statusKind maps an HTTP status from a provider to an error kind.
func statusKind(status int) ErrorKind {
	switch {
	case status == 429:
		return KindRateLimit
	case status == 408 || status == 504:
		return KindTimeout
	default:
		return KindStatus
	}
}
