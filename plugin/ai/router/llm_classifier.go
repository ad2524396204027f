package router

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/cache"
	"github.com/hrygo/switchboard/plugin/ai/timeout"
)

// ClassificationPrompt asks the model for a single probability.
const ClassificationPrompt = `You are a triage classifier for a Georgian-language assistant.
Estimate the probability (a number between 0 and 1) that the user's message needs emotional or psychological support.
Reply with the number only.

User message: %s`

var numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)`)

// LLMClassifier is the probabilistic stage, used when no keyword matched.
type LLMClassifier struct {
	llm   ai.LLMService
	model ai.ModelConfig
	cache *cache.LRU[float64] // nil disables caching
}

// NewLLMClassifier creates a new LLM classifier.
func NewLLMClassifier(llm ai.LLMService, model ai.ModelConfig) *LLMClassifier {
	return &LLMClassifier{llm: llm, model: model}
}

// WithCache reuses probabilities for repeated messages.
func (c *LLMClassifier) WithCache(probabilities *cache.LRU[float64]) *LLMClassifier {
	c.cache = probabilities
	return c
}

// Probability asks the model how likely the text needs psychological
// support. An unparseable reply is 0.0; only upstream failures are errors.
func (c *LLMClassifier) Probability(ctx context.Context, input string) (float64, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	if c.cache != nil {
		if p, ok := c.cache.Get(key); ok {
			return p, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout.ClassifierTimeout)
	defer cancel()

	messages := []ai.Message{ai.UserMessage(fmt.Sprintf(ClassificationPrompt, input))}
	reply, err := ai.ChatText(ctx, c.llm, messages, c.model)
	if err != nil {
		return 0, fmt.Errorf("LLM classification failed: %w", err)
	}
	p := parseProbability(reply)
	if c.cache != nil {
		c.cache.Set(key, p)
	}
	return p, nil
}

// parseProbability takes the first number-like token and clamps it to [0,1].
func parseProbability(reply string) float64 {
	token := numberPattern.FindString(reply)
	if token == "" {
		return 0
	}
	p, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
