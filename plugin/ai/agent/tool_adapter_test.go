package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/module"
)

// scriptedLLM returns its responses in order and records every request.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []*ai.ChatResponse
	errs      []error
	requests  []*ai.ChatRequest
}

func (s *scriptedLLM) Chat(_ context.Context, req *ai.ChatRequest) (*ai.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return &ai.ChatResponse{Content: "done"}, nil
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func routeCall(id, args string) *ai.ChatResponse {
	return &ai.ChatResponse{ToolCalls: []ai.ToolCall{{ID: id, Name: RouteToolName, Arguments: args}}}
}

func newTestAdapter(llm ai.LLMService) *ToolAdapter {
	return NewToolAdapter(llm, ai.ModelConfig{Model: "route"}, ai.ModelConfig{Model: "compose"})
}

func TestRouteTool(t *testing.T) {
	tool := RouteTool()
	assert.Equal(t, RouteToolName, tool.Name)

	props := tool.Parameters["properties"].(map[string]any)
	enum := props["module"].(map[string]any)["enum"].([]string)
	assert.ElementsMatch(t, module.Names(), enum)
}

func TestRouteProviderToolCall(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{
		routeCall("call_p", `{"module":"psychology","payload":{"mood":"low"}}`),
	}}

	inv, text, err := newTestAdapter(llm).Route(context.Background(), nil, "I feel bad", module.General, false)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Empty(t, text)
	assert.Equal(t, "call_p", inv.CallID)
	assert.Equal(t, module.Psychology, inv.Module)
	assert.False(t, inv.Synthetic)
	assert.Equal(t, "I feel bad", inv.Args.Text(), "missing text is injected")
	assert.Equal(t, "low", inv.Args.Get("mood"))

	req := llm.requests[0]
	assert.Equal(t, ai.ToolChoiceAuto, req.ToolChoice)
	assert.Equal(t, "route", req.Model)
	require.Len(t, req.Tools, 1)
}

func TestRouteKeepsProviderText(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{
		routeCall("call_p", `{"module":"legal","payload":{"text":"summarized question"}}`),
	}}

	inv, _, err := newTestAdapter(llm).Route(context.Background(), nil, "long question", module.Legal, true)
	require.NoError(t, err)
	assert.Equal(t, "summarized question", inv.Args.Text())
}

func TestRouteSyntheticCall(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{{Content: "plain answer"}}}

	inv, text, err := newTestAdapter(llm).Route(context.Background(), nil, "register me", module.Registration, false)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Empty(t, text)
	assert.True(t, inv.Synthetic)
	assert.True(t, strings.HasPrefix(inv.CallID, "call_"))
	assert.Greater(t, len(inv.CallID), len("call_"))
	assert.Equal(t, module.Registration, inv.Module)
	assert.Equal(t, "register me", inv.Args.Text())
}

func TestRouteVerbatimReply(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{{Content: "Hello! How can I help?"}}}

	inv, text, err := newTestAdapter(llm).Route(context.Background(), nil, "hi", module.General, false)
	require.NoError(t, err)
	assert.Nil(t, inv)
	assert.Equal(t, "Hello! How can I help?", text)
}

func TestRouteLocalDecisionWins(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{
		routeCall("call_p", `{"module":"legal","payload":{"topic":"rent"}}`),
	}}

	inv, _, err := newTestAdapter(llm).Route(context.Background(), nil, "username: a password: b", module.Registration, false)
	require.NoError(t, err)
	assert.Equal(t, module.Registration, inv.Module)
	assert.Equal(t, "call_p", inv.CallID)
	assert.Empty(t, inv.Args.Get("topic"), "payload for another module is dropped")
	assert.Equal(t, "username: a password: b", inv.Args.Text())
}

func TestRoutePinnedGeneral(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{
		routeCall("call_p", `{"module":"psychology"}`),
	}}

	inv, _, err := newTestAdapter(llm).Route(context.Background(), nil, "hi", module.General, true)
	require.NoError(t, err)
	assert.Equal(t, module.General, inv.Module)
}

func TestRouteInvalidToolCall(t *testing.T) {
	tests := []struct {
		name string
		call ai.ToolCall
	}{
		{"bad json", ai.ToolCall{ID: "c", Name: RouteToolName, Arguments: `{"module":`}},
		{"unknown module", ai.ToolCall{ID: "c", Name: RouteToolName, Arguments: `{"module":"astrology"}`}},
		{"other function", ai.ToolCall{ID: "c", Name: "delete_everything", Arguments: `{}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{responses: []*ai.ChatResponse{{ToolCalls: []ai.ToolCall{tt.call}}}}
			_, _, err := newTestAdapter(llm).Route(context.Background(), nil, "x", module.General, false)
			assert.ErrorIs(t, err, ErrInvalidToolCall)
		})
	}
}

func TestRouteUpstreamError(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("down")}}
	_, _, err := newTestAdapter(llm).Route(context.Background(), nil, "x", module.General, false)
	assert.Error(t, err)
}

func TestCompose(t *testing.T) {
	llm := &scriptedLLM{responses: []*ai.ChatResponse{{Content: "Here is what I found."}}}
	inv := &Invocation{CallID: "call_x", Module: module.Legal, Args: module.Args{"text": "q"}}
	res := &module.Result{Module: module.Legal, Text: "see article 5"}
	history := []ai.Message{ai.UserMessage("earlier"), ai.AssistantMessage("reply")}

	text, err := newTestAdapter(llm).Compose(context.Background(), history, "q", inv, res)
	require.NoError(t, err)
	assert.Equal(t, "Here is what I found.", text)

	req := llm.requests[0]
	assert.Equal(t, ai.ToolChoiceNone, req.ToolChoice)
	assert.Equal(t, "compose", req.Model)

	msgs := req.Messages
	require.Len(t, msgs, 6)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "q", msgs[3].Content)

	call := msgs[4]
	assert.Equal(t, "assistant", call.Role)
	require.Len(t, call.ToolCalls, 1)
	assert.Equal(t, "call_x", call.ToolCalls[0].ID)
	assert.JSONEq(t, `{"module":"legal","payload":{"text":"q"}}`, call.ToolCalls[0].Arguments)

	result := msgs[5]
	assert.Equal(t, "tool", result.Role)
	assert.Equal(t, "call_x", result.ToolCallID)
	assert.JSONEq(t, `{"module":"legal","text":"see article 5"}`, result.Content)
}
