package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// FallbackService wraps a primary and fallback LLMService.
// If the primary fails, the request is replayed against the fallback with
// the fallback's own model.
type FallbackService struct {
	primary       LLMService
	fallback      LLMService
	fallbackModel string
}

// NewFallbackService creates a new fallback chain.
func NewFallbackService(primary, fallback LLMService, fallbackModel string) *FallbackService {
	return &FallbackService{
		primary:       primary,
		fallback:      fallback,
		fallbackModel: fallbackModel,
	}
}

func (s *FallbackService) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := s.primary.Chat(ctx, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	slog.Warn("primary provider failed, falling back",
		slog.String("model", req.Model),
		slog.String("fallback_model", s.fallbackModel),
		slog.String("error", err.Error()))

	fbReq := *req
	fbReq.Model = s.fallbackModel
	fbResp, fbErr := s.fallback.Chat(ctx, &fbReq)
	if fbErr != nil {
		return nil, fmt.Errorf("primary failed: %w; fallback also failed: %v", err, fbErr)
	}
	return fbResp, nil
}

var _ LLMService = (*FallbackService)(nil)
