package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Log field names shared by request-scoped loggers.
const (
	LogFieldRequestID  = "request_id"
	LogFieldSessionID  = "session_id"
	LogFieldModule     = "module"
	LogFieldDuration   = "duration_ms"
	LogFieldMessageLen = "message_length"
)

// RequestContext identifies one inbound chat turn in logs.
type RequestContext struct {
	RequestID string
	SessionID string
	StartTime time.Time

	logger *slog.Logger
}

// NewRequestContext binds requestID and sessionID to base. An empty
// requestID gets a generated one.
func NewRequestContext(base *slog.Logger, requestID, sessionID string) *RequestContext {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if base == nil {
		base = slog.Default()
	}
	return &RequestContext{
		RequestID: requestID,
		SessionID: sessionID,
		StartTime: time.Now(),
		logger: base.With(
			slog.String(LogFieldRequestID, requestID),
			slog.String(LogFieldSessionID, sessionID)),
	}
}

// Logger returns the logger carrying the request fields.
func (r *RequestContext) Logger() *slog.Logger {
	return r.logger
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() int64 {
	return time.Since(r.StartTime).Milliseconds()
}

type ctxKey struct{}

func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

func FromContext(ctx context.Context) (*RequestContext, bool) {
	reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return reqCtx, ok
}

// Logger returns the request logger stored in ctx, or the default logger
// outside a request.
func Logger(ctx context.Context) *slog.Logger {
	if rc, ok := FromContext(ctx); ok {
		return rc.logger
	}
	return slog.Default()
}
