package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/hrygo/switchboard/plugin/ai"
)

// ErrorCode is the machine-readable code returned to API callers.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the requested resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeRateLimitExceeded indicates the caller sent too many requests.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeServiceUnavailable indicates the upstream provider stayed rate
	// limited for the whole retry budget.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContextCanceled indicates the caller went away.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeUpstreamFailed indicates a non-retryable provider failure.
	ErrCodeUpstreamFailed ErrorCode = "UPSTREAM_FAILED"
	// ErrCodeInternal indicates any other failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// httpStatus maps codes to HTTP statuses.
var httpStatus = map[ErrorCode]int{
	ErrCodeInvalidArgument:    http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeRateLimitExceeded:  http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeContextCanceled:    499,
	ErrCodeUpstreamFailed:     http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// APIError is a structured error rendered as {error, code}. Message is safe
// to show to callers; Cause is only logged.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status for the error code.
func (e *APIError) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// Wrap wraps an existing error with a code and caller-safe message.
func Wrap(cause error, code ErrorCode, msg string) *APIError {
	return &APIError{Code: code, Message: msg, Cause: cause}
}

// FromError classifies any error. Upstream errors map by kind; everything
// unknown becomes INTERNAL with a generic message.
func FromError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var upErr *ai.UpstreamError
	if stderrors.As(err, &upErr) || stderrors.Is(err, ai.ErrRateLimited) {
		switch ai.KindOf(err) {
		case ai.KindRateLimit:
			return Wrap(err, ErrCodeServiceUnavailable, "the assistant is temporarily unavailable, please try again shortly")
		case ai.KindTimeout:
			return Wrap(err, ErrCodeTimeout, "the assistant took too long to answer")
		case ai.KindCanceled:
			return Wrap(err, ErrCodeContextCanceled, "request canceled")
		default:
			return Wrap(err, ErrCodeUpstreamFailed, "the assistant could not answer")
		}
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "request timed out")
	case stderrors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeContextCanceled, "request canceled")
	}
	return Wrap(err, ErrCodeInternal, "internal error")
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
