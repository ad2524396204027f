// Package agent runs one chat turn: routing, the route_to_module tool-call
// round trip, module execution and history bookkeeping.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/module"
)

// RouteToolName is the single function offered to the provider.
const RouteToolName = "route_to_module"

// ErrInvalidToolCall is returned when the provider's function call cannot
// be used: wrong function, bad JSON or unknown module.
var ErrInvalidToolCall = errors.New("invalid tool call")

const routingSystemPrompt = `You are the front desk of a Georgian-language support service.
Reply to the user directly, or call route_to_module when a specialist module should handle the message:
- psychology: emotional distress, anxiety, panic, loneliness
- legal: questions about law, contracts, rights
- social: social services and benefits
- registration / login: the user wants to create an account or sign in
Pass the user's message as payload.text.`

// RouteTool describes route_to_module.
func RouteTool() ai.ToolDescriptor {
	return ai.ToolDescriptor{
		Name:        RouteToolName,
		Description: "Route the user's message to a specialist module.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"module": map[string]any{
					"type": "string",
					"enum": module.Names(),
				},
				"payload": map[string]any{
					"type":        "object",
					"description": "Arguments for the module; text carries the user's message.",
				},
			},
			"required": []string{"module"},
		},
	}
}

// Invocation is a module call, either requested by the provider or
// synthesized from the local routing decision.
type Invocation struct {
	CallID    string
	Module    module.Module
	Args      module.Args
	Synthetic bool
}

type routeArguments struct {
	Module  string         `json:"module"`
	Payload map[string]any `json:"payload,omitempty"`
}

// arguments renders the invocation as tool-call arguments.
func (inv *Invocation) arguments() string {
	data, err := json.Marshal(routeArguments{Module: inv.Module.String(), Payload: inv.Args})
	if err != nil {
		return fmt.Sprintf(`{"module":%q}`, inv.Module)
	}
	return string(data)
}

// ToolAdapter reconciles the provider's function-call decision with the
// locally computed module. Either one alone is enough to route a message,
// and a turn never takes more than two provider round trips.
type ToolAdapter struct {
	llm     ai.LLMService
	routing ai.ModelConfig
	compose ai.ModelConfig
}

// NewToolAdapter creates an adapter. routing configures the first call and
// compose the second.
func NewToolAdapter(llm ai.LLMService, routing, compose ai.ModelConfig) *ToolAdapter {
	return &ToolAdapter{llm: llm, routing: routing, compose: compose}
}

// Route performs the first provider call. It returns the invocation to
// execute, or nil together with the provider's reply when neither the
// provider nor the local decision asks for a module. When pinned is set the
// local module wins even if it is General.
func (a *ToolAdapter) Route(ctx context.Context, history []ai.Message, text string, local module.Module, pinned bool) (*Invocation, string, error) {
	resp, err := a.llm.Chat(ctx, &ai.ChatRequest{
		Messages:    ai.FormatMessages(routingSystemPrompt, text, history),
		Tools:       []ai.ToolDescriptor{RouteTool()},
		ToolChoice:  ai.ToolChoiceAuto,
		Model:       a.routing.Model,
		MaxTokens:   a.routing.MaxTokens,
		Temperature: a.routing.Temperature,
	})
	if err != nil {
		return nil, "", err
	}

	var inv *Invocation
	switch {
	case len(resp.ToolCalls) > 0:
		inv, err = parseToolCall(resp.ToolCalls[0])
		if err != nil {
			return nil, "", err
		}
		if (pinned || local != module.General) && inv.Module != local {
			observability.Logger(ctx).Debug("local routing overrides provider tool call",
				"provider_module", inv.Module,
				"local_module", local)
			inv.Module = local
			inv.Args = module.Args{}
		}
	case pinned || local != module.General:
		inv = &Invocation{
			CallID:    "call_" + shortuuid.New(),
			Module:    local,
			Args:      module.Args{},
			Synthetic: true,
		}
	default:
		return nil, resp.Content, nil
	}

	if inv.Args.Text() == "" {
		inv.Args["text"] = text
	}
	return inv, "", nil
}

func parseToolCall(tc ai.ToolCall) (*Invocation, error) {
	if tc.Name != RouteToolName {
		return nil, fmt.Errorf("%w: unexpected function %q", ErrInvalidToolCall, tc.Name)
	}

	var args routeArguments
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToolCall, err)
	}
	m, err := module.Parse(args.Module)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToolCall, err)
	}

	inv := &Invocation{
		CallID: tc.ID,
		Module: m,
		Args:   module.Args(args.Payload),
	}
	if inv.CallID == "" {
		inv.CallID = "call_" + shortuuid.New()
	}
	if inv.Args == nil {
		inv.Args = module.Args{}
	}
	return inv, nil
}

// Compose performs the second provider call. It replays the user turn, the
// tool call and the module result, and forbids further tool calls.
func (a *ToolAdapter) Compose(ctx context.Context, history []ai.Message, text string, inv *Invocation, res *module.Result) (string, error) {
	messages := ai.FormatMessages(routingSystemPrompt, text, history)
	messages = append(messages,
		ai.Message{
			Role:      "assistant",
			ToolCalls: []ai.ToolCall{{ID: inv.CallID, Name: RouteToolName, Arguments: inv.arguments()}},
		},
		ai.ToolResultMessage(inv.CallID, res.JSON()),
	)

	resp, err := a.llm.Chat(ctx, &ai.ChatRequest{
		Messages:    messages,
		Tools:       []ai.ToolDescriptor{RouteTool()},
		ToolChoice:  ai.ToolChoiceNone,
		Model:       a.compose.Model,
		MaxTokens:   a.compose.MaxTokens,
		Temperature: a.compose.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.ToolCalls) > 0 {
		observability.Logger(ctx).Warn("provider requested a tool call after tool_choice none; ignoring",
			"calls", len(resp.ToolCalls))
	}
	return resp.Content, nil
}
