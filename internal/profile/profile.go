package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where switchboard stores users and persisted history
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Chat-completion providers
	OpenAIAPIKey    string // SWITCHBOARD_OPENAI_API_KEY (legacy: OPENAI_API_KEY)
	OpenAIBaseURL   string // SWITCHBOARD_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	ChatModel       string // SWITCHBOARD_CHAT_MODEL (legacy: OPENAI_MODEL, default: gpt-4o-mini)
	ClassifierModel string // SWITCHBOARD_CLASSIFIER_MODEL (default: ChatModel)
	AnthropicAPIKey string // SWITCHBOARD_ANTHROPIC_API_KEY (legacy: ANTHROPIC_API_KEY)
	AnthropicModel  string // SWITCHBOARD_ANTHROPIC_MODEL (default: claude-sonnet-4-5-20250929)

	// RemoteModuleURL is the base URL of the remote legal/social module service.
	RemoteModuleURL string // SWITCHBOARD_REMOTE_MODULE_URL (legacy: REMOTE_MODULE_URL)
	// RemotePollAttempts bounds how often a pending remote job is polled.
	RemotePollAttempts int

	// Routing
	ClassifierEnterThreshold float64 // probability needed to enter psychology from general
	ClassifierStayThreshold  float64 // probability needed when already in psychology
	RegistrationThreshold    int     // prior user messages before unregistered users must sign up
	HistoryCap               int     // messages kept per session

	// Upstream and request limits
	MaxConcurrentCalls int     // concurrent upstream calls across all sessions
	ChatRateLimit      float64 // /chat requests per second per session
	ChatRateBurst      int
}

const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultChatModel      = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"

	defaultChatRateLimit      = 2
	defaultChatRateBurst      = 5
	defaultRemotePollAttempts = 15
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsDemo reports whether the echo provider may stand in for a real one.
func (p *Profile) IsDemo() bool {
	return p.Mode == "demo"
}

// HasPrimaryProvider reports whether the OpenAI-compatible provider is configured.
func (p *Profile) HasPrimaryProvider() bool {
	return p.OpenAIAPIKey != ""
}

// HasFallbackProvider reports whether the Anthropic fallback provider is configured.
func (p *Profile) HasFallbackProvider() bool {
	return p.AnthropicAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv fills provider settings left empty by flags from the legacy
// environment names used by earlier deployments.
func (p *Profile) FromEnv() {
	fill := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, key := range keys {
			if val := os.Getenv(key); val != "" {
				*dst = val
				return
			}
		}
	}

	fill(&p.OpenAIAPIKey, "SWITCHBOARD_OPENAI_API_KEY", "OPENAI_API_KEY")
	fill(&p.OpenAIBaseURL, "SWITCHBOARD_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	fill(&p.ChatModel, "SWITCHBOARD_CHAT_MODEL", "OPENAI_MODEL")
	fill(&p.ClassifierModel, "SWITCHBOARD_CLASSIFIER_MODEL")
	fill(&p.AnthropicAPIKey, "SWITCHBOARD_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	fill(&p.AnthropicModel, "SWITCHBOARD_ANTHROPIC_MODEL", "ANTHROPIC_MODEL")
	fill(&p.RemoteModuleURL, "SWITCHBOARD_REMOTE_MODULE_URL", "REMOTE_MODULE_URL")
	fill(&p.DSN, "SWITCHBOARD_DSN", "DB_PATH")

	if p.OpenAIBaseURL == "" {
		p.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	if p.ChatModel == "" {
		p.ChatModel = getEnvOrDefault("OPENAI_MODEL", defaultChatModel)
	}
	if p.ClassifierModel == "" {
		p.ClassifierModel = p.ChatModel
	}
	if p.AnthropicModel == "" {
		p.AnthropicModel = defaultAnthropicModel
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and rejects half-configured setups.
// A missing provider key is fatal unless a fallback provider is configured
// or the server runs in demo mode with the echo provider.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		return errors.Errorf(`mode must be "prod", "dev" or "demo", got %q`, p.Mode)
	}

	if !p.HasPrimaryProvider() && !p.HasFallbackProvider() && !p.IsDemo() {
		return errors.New("provider API key is required: set SWITCHBOARD_OPENAI_API_KEY or configure SWITCHBOARD_ANTHROPIC_API_KEY as fallback")
	}

	if p.ClassifierEnterThreshold <= 0 || p.ClassifierEnterThreshold > 1 {
		return errors.Errorf("classifier enter threshold must be within (0,1], got %v", p.ClassifierEnterThreshold)
	}
	if p.ClassifierStayThreshold < 0 || p.ClassifierStayThreshold > 1 {
		return errors.Errorf("classifier stay threshold must be within [0,1], got %v", p.ClassifierStayThreshold)
	}
	if p.ClassifierStayThreshold > p.ClassifierEnterThreshold {
		slog.Warn("classifier stay threshold is above enter threshold; hysteresis is inverted",
			slog.Float64("enter", p.ClassifierEnterThreshold),
			slog.Float64("stay", p.ClassifierStayThreshold))
	}
	if p.RegistrationThreshold < 0 {
		return errors.Errorf("registration threshold must not be negative, got %d", p.RegistrationThreshold)
	}
	if p.HistoryCap <= 0 {
		return errors.Errorf("history cap must be positive, got %d", p.HistoryCap)
	}
	if p.ChatRateLimit <= 0 {
		p.ChatRateLimit = defaultChatRateLimit
	}
	if p.ChatRateBurst <= 0 {
		p.ChatRateBurst = defaultChatRateBurst
	}
	if p.RemotePollAttempts <= 0 {
		p.RemotePollAttempts = defaultRemotePollAttempts
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("switchboard_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}
