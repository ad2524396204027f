package router

import (
	"context"
	"time"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/timeout"
)

// Default hysteresis thresholds.
const (
	DefaultEnterThreshold = 0.4
	DefaultStayThreshold  = 0.2
)

// ClassifierConfig configures the hysteresis thresholds.
type ClassifierConfig struct {
	EnterThreshold float64 // probability needed to enter Psychology
	StayThreshold  float64 // probability needed to remain in Psychology
}

// IntentClassifier labels a message with a module.
type IntentClassifier interface {
	Classify(ctx context.Context, input string, current module.Module) module.Module
}

// Classifier runs the rule stage first and falls back to the LLM stage.
type Classifier struct {
	rules *RuleMatcher
	llm   *LLMClassifier
	cfg   ClassifierConfig
}

// NewClassifier creates a two-stage classifier. llm may be nil, in which
// case unmatched input is General.
func NewClassifier(rules *RuleMatcher, llm *LLMClassifier, cfg ClassifierConfig) *Classifier {
	if rules == nil {
		rules = NewRuleMatcher()
	}
	return &Classifier{rules: rules, llm: llm, cfg: cfg}
}

// Classify never fails: upstream errors degrade to General.
func (c *Classifier) Classify(ctx context.Context, input string, current module.Module) module.Module {
	start := time.Now()

	if c.rules.MatchPsychology(input) {
		observability.Logger(ctx).Debug("intent classified by rule matcher",
			"input", truncate(input, 50),
			"module", module.Psychology,
			"latency_ms", time.Since(start).Milliseconds())
		return module.Psychology
	}

	if c.llm == nil {
		return module.General
	}

	p, err := c.llm.Probability(ctx, input)
	if err != nil {
		observability.Logger(ctx).Warn("LLM classifier error, falling back to general", "error", err)
		return module.General
	}

	threshold := c.cfg.EnterThreshold
	if current == module.Psychology {
		threshold = c.cfg.StayThreshold
	}

	result := module.General
	if p >= threshold {
		result = module.Psychology
	}
	observability.Logger(ctx).Debug("intent classified by LLM",
		"input", truncate(input, 50),
		"probability", p,
		"threshold", threshold,
		"module", result,
		"latency_ms", time.Since(start).Milliseconds())
	return result
}

// truncate truncates a string to maxLen runes.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = timeout.MaxTruncateLength
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

var _ IntentClassifier = (*Classifier)(nil)
