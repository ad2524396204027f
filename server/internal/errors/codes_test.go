package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/switchboard/plugin/ai"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
	}{
		{
			name:       "rate limit exhaustion",
			err:        fmt.Errorf("turn: %w", &ai.UpstreamError{Kind: ai.KindRateLimit, Provider: "openai", StatusCode: 429}),
			wantCode:   ErrCodeServiceUnavailable,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "rate limit sentinel",
			err:        ai.ErrRateLimited,
			wantCode:   ErrCodeServiceUnavailable,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "upstream timeout",
			err:        &ai.UpstreamError{Kind: ai.KindTimeout, Provider: "openai"},
			wantCode:   ErrCodeTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "malformed response",
			err:        &ai.UpstreamError{Kind: ai.KindMalformed, Provider: "anthropic"},
			wantCode:   ErrCodeUpstreamFailed,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "session lock deadline",
			err:        fmt.Errorf("waiting for session s: %w", context.DeadlineExceeded),
			wantCode:   ErrCodeTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("disk on fire"),
			wantCode:   ErrCodeInternal,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "already structured",
			err:        InvalidArgument("text is required"),
			wantCode:   ErrCodeInvalidArgument,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantStatus, apiErr.HTTPStatus())
			assert.NotContains(t, apiErr.Message, "disk on fire", "causes never reach the message")
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("session not found"))
	assert.True(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(err, ErrCodeInternal))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrCodeNotFound))
}
