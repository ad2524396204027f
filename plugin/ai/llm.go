package ai

import (
	"context"
	"fmt"
	"strings"
)

// Message represents a chat message.
type Message struct {
	Role       string // system, user, assistant, tool
	Content    string
	ToolCalls  []ToolCall // assistant messages that invoke functions
	ToolCallID string     // tool messages answering a call
}

// ToolCall is a function invocation requested by the model.
// Arguments holds the raw JSON argument object.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDescriptor describes a function the model may call.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema object
}

// ToolChoice controls whether the model may invoke functions.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// ChatRequest is a provider-neutral chat-completion request.
type ChatRequest struct {
	Messages    []Message
	Tools       []ToolDescriptor
	ToolChoice  ToolChoice
	Model       string // empty selects the provider default
	MaxTokens   int
	Temperature float32
}

// Usage reports token consumption of one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ChatResponse is a provider-neutral chat-completion response.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// LLMService is the chat-completion service interface.
type LLMService interface {
	// Chat performs one synchronous completion round trip.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatText runs a plain completion and returns the reply text.
func ChatText(ctx context.Context, svc LLMService, messages []Message, cfg ModelConfig) (string, error) {
	resp, err := svc.Chat(ctx, &ChatRequest{
		Messages:    messages,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Helper for creating system prompts
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Helper for creating assistant messages
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// ToolResultMessage answers the tool call with the given id.
func ToolResultMessage(callID, content string) Message {
	return Message{Role: "tool", ToolCallID: callID, Content: content}
}

// FormatMessages formats messages for prompt templates.
func FormatMessages(systemPrompt string, userContent string, history []Message) []Message {
	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, SystemPrompt(systemPrompt))
	}
	messages = append(messages, history...)
	messages = append(messages, UserMessage(userContent))
	return messages
}

// EchoService replies with the last message it was given. It stands in for a
// real provider in demo mode and never invokes tools.
type EchoService struct{}

// NewEchoService creates an echo provider.
func NewEchoService() *EchoService {
	return &EchoService{}
}

func (s *EchoService) Chat(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if m := req.Messages[i]; m.Role == "user" || m.Role == "tool" {
			last = m.Content
			break
		}
	}
	return &ChatResponse{Content: fmt.Sprintf("Echo: %s", strings.TrimSpace(last))}, nil
}

var _ LLMService = (*EchoService)(nil)
