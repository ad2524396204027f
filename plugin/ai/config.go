package ai

import (
	"errors"
	"fmt"

	"github.com/hrygo/switchboard/internal/profile"
)

// Provider names accepted by NewLLMService.
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
	ProviderEcho      = "echo"
)

// Config represents AI configuration.
type Config struct {
	LLM      LLMConfig // primary provider
	Fallback LLMConfig // optional; Provider empty when unset

	ClassifierModel string
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // openai, deepseek, anthropic, echo
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1024
	Temperature float32 // default: 0.7
}

// TaskType represents the type of task for model selection.
type TaskType string

const (
	TaskIntentClassification TaskType = "intent_classification"
	TaskRouting              TaskType = "routing"
	TaskPsychology           TaskType = "psychology"
	TaskComposition          TaskType = "composition"
)

// ModelConfig represents the configuration for a model.
type ModelConfig struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		ClassifierModel: p.ClassifierModel,
	}

	switch {
	case p.HasPrimaryProvider():
		cfg.LLM = LLMConfig{
			Provider: ProviderOpenAI,
			Model:    p.ChatModel,
			APIKey:   p.OpenAIAPIKey,
			BaseURL:  p.OpenAIBaseURL,
		}
		if p.HasFallbackProvider() {
			cfg.Fallback = LLMConfig{
				Provider: ProviderAnthropic,
				Model:    p.AnthropicModel,
				APIKey:   p.AnthropicAPIKey,
			}
		}
	case p.HasFallbackProvider():
		cfg.LLM = LLMConfig{
			Provider: ProviderAnthropic,
			Model:    p.AnthropicModel,
			APIKey:   p.AnthropicAPIKey,
		}
		// The OpenAI model id means nothing to Anthropic.
		cfg.ClassifierModel = p.AnthropicModel
	default:
		cfg.LLM = LLMConfig{Provider: ProviderEcho}
	}

	cfg.LLM.applyDefaults()
	if cfg.Fallback.Provider != "" {
		cfg.Fallback.applyDefaults()
	}
	if cfg.ClassifierModel == "" {
		cfg.ClassifierModel = cfg.LLM.Model
	}
	return cfg
}

func (c *LLMConfig) applyDefaults() {
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.LLM.Provider != ProviderEcho && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Fallback.Provider != "" && c.Fallback.Provider != ProviderEcho && c.Fallback.APIKey == "" {
		return errors.New("fallback LLM API key is required")
	}
	return nil
}

// HasFallback reports whether a fallback provider is configured.
func (c *Config) HasFallback() bool {
	return c.Fallback.Provider != ""
}

// ModelFor selects model parameters for a task.
func (c *Config) ModelFor(task TaskType) ModelConfig {
	switch task {
	case TaskIntentClassification:
		return ModelConfig{Model: c.ClassifierModel, MaxTokens: 8, Temperature: 0}
	case TaskRouting:
		return ModelConfig{Model: c.LLM.Model, MaxTokens: c.LLM.MaxTokens, Temperature: 0.3}
	case TaskPsychology:
		return ModelConfig{Model: c.LLM.Model, MaxTokens: 800, Temperature: 0.7}
	case TaskComposition:
		return ModelConfig{Model: c.LLM.Model, MaxTokens: c.LLM.MaxTokens, Temperature: c.LLM.Temperature}
	default:
		return ModelConfig{Model: c.LLM.Model, MaxTokens: c.LLM.MaxTokens, Temperature: c.LLM.Temperature}
	}
}

// NewLLMService creates the provider client for one LLMConfig.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderDeepSeek:
		// DeepSeek is compatible with OpenAI API
		return NewOpenAIService(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicService(cfg), nil
	case ProviderEcho:
		return NewEchoService(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewServiceFromConfig builds the full upstream chain: every provider is
// wrapped in retry/backoff, and the fallback (if any) is consulted when the
// primary fails.
func NewServiceFromConfig(cfg *Config, retry RetryConfig) (LLMService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	primary, err := NewLLMService(&cfg.LLM)
	if err != nil {
		return nil, err
	}
	var svc LLMService = NewRetryService(cfg.LLM.Provider, primary, retry)

	if cfg.HasFallback() {
		fallback, err := NewLLMService(&cfg.Fallback)
		if err != nil {
			return nil, err
		}
		svc = NewFallbackService(svc, NewRetryService(cfg.Fallback.Provider, fallback, retry), cfg.Fallback.Model)
	}
	return svc, nil
}
