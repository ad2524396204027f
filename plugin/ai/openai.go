package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIService talks to any OpenAI-compatible chat-completion endpoint.
type OpenAIService struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAIService creates a new OpenAI-compatible provider.
func NewOpenAIService(cfg *LLMConfig) *OpenAIService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIService{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.Model,
	}
}

func (s *OpenAIService) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	r := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		r.Tools = toOpenAITools(req.Tools)
		if req.ToolChoice != "" {
			r.ToolChoice = string(req.ToolChoice)
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &UpstreamError{Kind: KindMalformed, Provider: ProviderOpenAI, Cause: ErrEmptyResponse}
	}

	msg := resp.Choices[0].Message
	out := &ChatResponse{
		Content: messageText(msg),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

// messageText flattens content that some compatible servers return as a
// list of typed parts.
func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" || len(msg.MultiContent) == 0 {
		return msg.Content
	}
	var sb strings.Builder
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		m := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = m
	}
	return out
}

func toOpenAITools(tools []ToolDescriptor) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			Kind:       statusKind(apiErr.HTTPStatusCode),
			Provider:   ProviderOpenAI,
			StatusCode: apiErr.HTTPStatusCode,
			Cause:      err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{
			Kind:       statusKind(reqErr.HTTPStatusCode),
			Provider:   ProviderOpenAI,
			StatusCode: reqErr.HTTPStatusCode,
			Cause:      err,
		}
	}
	return asUpstream(ProviderOpenAI, err)
}

var _ LLMService = (*OpenAIService)(nil)
