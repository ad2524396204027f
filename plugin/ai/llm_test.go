package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoService(t *testing.T) {
	svc := NewEchoService()

	resp, err := svc.Chat(context.Background(), &ChatRequest{
		Messages: FormatMessages("be nice", "hello there", []Message{AssistantMessage("hi")}),
		Tools:    []ToolDescriptor{{Name: "route_to_module"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Echo: hello there", resp.Content)
	assert.Empty(t, resp.ToolCalls, "echo never calls tools")
}

func TestFormatMessages(t *testing.T) {
	msgs := FormatMessages("sys", "question", []Message{UserMessage("a"), AssistantMessage("b")})
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "question", msgs[3].Content)

	msgs = FormatMessages("", "question", nil)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}

type fixedLLM struct {
	resp *ChatResponse
	err  error
	last *ChatRequest
}

func (f *fixedLLM) Chat(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
	f.last = req
	return f.resp, f.err
}

func TestChatText(t *testing.T) {
	llm := &fixedLLM{resp: &ChatResponse{Content: "0.7"}}

	out, err := ChatText(context.Background(), llm, []Message{UserMessage("x")}, ModelConfig{Model: "m", MaxTokens: 8})
	require.NoError(t, err)
	assert.Equal(t, "0.7", out)
	assert.Equal(t, "m", llm.last.Model)
	assert.Equal(t, 8, llm.last.MaxTokens)

	llm.err = errors.New("down")
	_, err = ChatText(context.Background(), llm, nil, ModelConfig{})
	require.Error(t, err)
}

func TestFallbackService(t *testing.T) {
	t.Run("primary success skips fallback", func(t *testing.T) {
		primary := &fixedLLM{resp: &ChatResponse{Content: "primary"}}
		fallback := &fixedLLM{resp: &ChatResponse{Content: "fallback"}}
		svc := NewFallbackService(primary, fallback, "claude")

		resp, err := svc.Chat(context.Background(), &ChatRequest{Model: "gpt"})
		require.NoError(t, err)
		assert.Equal(t, "primary", resp.Content)
		assert.Nil(t, fallback.last)
	})

	t.Run("primary failure uses fallback model", func(t *testing.T) {
		primary := &fixedLLM{err: rateLimit()}
		fallback := &fixedLLM{resp: &ChatResponse{Content: "fallback"}}
		svc := NewFallbackService(primary, fallback, "claude")

		req := &ChatRequest{Model: "gpt"}
		resp, err := svc.Chat(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "fallback", resp.Content)
		assert.Equal(t, "claude", fallback.last.Model)
		assert.Equal(t, "gpt", req.Model, "caller request is not mutated")
	})

	t.Run("both fail keeps primary error kind", func(t *testing.T) {
		primary := &fixedLLM{err: rateLimit()}
		fallback := &fixedLLM{err: errors.New("also down")}
		svc := NewFallbackService(primary, fallback, "claude")

		_, err := svc.Chat(context.Background(), &ChatRequest{})
		require.Error(t, err)
		assert.True(t, IsRateLimit(err))
	})
}
