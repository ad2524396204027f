package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legacyEnvVars = []string{
	"SWITCHBOARD_OPENAI_API_KEY", "OPENAI_API_KEY",
	"SWITCHBOARD_OPENAI_BASE_URL", "OPENAI_BASE_URL",
	"SWITCHBOARD_CHAT_MODEL", "OPENAI_MODEL",
	"SWITCHBOARD_CLASSIFIER_MODEL",
	"SWITCHBOARD_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY",
	"SWITCHBOARD_ANTHROPIC_MODEL", "ANTHROPIC_MODEL",
	"SWITCHBOARD_REMOTE_MODULE_URL", "REMOTE_MODULE_URL",
	"SWITCHBOARD_DSN", "DB_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range legacyEnvVars {
		t.Setenv(key, "")
	}
}

func validProfile() *Profile {
	return &Profile{
		Mode:                     "prod",
		OpenAIAPIKey:             "sk-test",
		ClassifierEnterThreshold: 0.4,
		ClassifierStayThreshold:  0.2,
		RegistrationThreshold:    2,
		HistoryCap:               40,
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "https://api.openai.com/v1", p.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o-mini", p.ChatModel)
	assert.Equal(t, "gpt-4o-mini", p.ClassifierModel, "classifier model defaults to chat model")
	assert.Equal(t, "claude-sonnet-4-5-20250929", p.AnthropicModel)
	assert.Empty(t, p.OpenAIAPIKey)
	assert.Empty(t, p.RemoteModuleURL)
}

func TestFromEnvLegacyNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("DB_PATH", "data.db")
	t.Setenv("REMOTE_MODULE_URL", "http://lora:8000")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "sk-legacy", p.OpenAIAPIKey)
	assert.Equal(t, "gpt-4.1", p.ChatModel)
	assert.Equal(t, "data.db", p.DSN)
	assert.Equal(t, "http://lora:8000", p.RemoteModuleURL)
}

func TestFromEnvKeepsFlagValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	p := &Profile{OpenAIAPIKey: "sk-flag"}
	p.FromEnv()

	assert.Equal(t, "sk-flag", p.OpenAIAPIKey)
}

func TestValidate(t *testing.T) {
	t.Run("missing provider key is fatal", func(t *testing.T) {
		p := validProfile()
		p.OpenAIAPIKey = ""
		p.Data = t.TempDir()
		require.Error(t, p.Validate())
	})

	t.Run("fallback provider satisfies key requirement", func(t *testing.T) {
		p := validProfile()
		p.OpenAIAPIKey = ""
		p.AnthropicAPIKey = "sk-ant"
		p.Data = t.TempDir()
		require.NoError(t, p.Validate())
	})

	t.Run("demo mode runs without keys", func(t *testing.T) {
		p := validProfile()
		p.Mode = "demo"
		p.OpenAIAPIKey = ""
		p.Data = t.TempDir()
		require.NoError(t, p.Validate())
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		for _, mode := range []string{"production", "staging", ""} {
			p := validProfile()
			p.Mode = mode
			p.OpenAIAPIKey = ""
			p.Data = t.TempDir()
			assert.ErrorContains(t, p.Validate(), "mode", mode)
		}
	})

	t.Run("sqlite dsn derived from data dir", func(t *testing.T) {
		dir := t.TempDir()
		p := validProfile()
		p.Data = dir
		require.NoError(t, p.Validate())
		assert.Equal(t, "sqlite", p.Driver)
		assert.Equal(t, filepath.Join(dir, "switchboard_prod.db"), p.DSN)
	})

	t.Run("missing data dir", func(t *testing.T) {
		p := validProfile()
		p.Data = filepath.Join(os.TempDir(), "switchboard-does-not-exist", "nested")
		require.Error(t, p.Validate())
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		p := validProfile()
		p.Driver = "postgres"
		require.Error(t, p.Validate())
	})

	t.Run("thresholds out of range", func(t *testing.T) {
		p := validProfile()
		p.ClassifierEnterThreshold = 1.5
		p.Data = t.TempDir()
		require.Error(t, p.Validate())
	})

	t.Run("enter threshold must be positive", func(t *testing.T) {
		p := validProfile()
		p.ClassifierEnterThreshold = 0
		p.ClassifierStayThreshold = 0
		p.Data = t.TempDir()
		assert.ErrorContains(t, p.Validate(), "enter threshold")
	})

	t.Run("history cap must be positive", func(t *testing.T) {
		p := validProfile()
		p.HistoryCap = 0
		p.Data = t.TempDir()
		require.Error(t, p.Validate())
	})
	t.Run("limits default when unset", func(t *testing.T) {
		p := validProfile()
		p.Data = t.TempDir()
		require.NoError(t, p.Validate())
		assert.InDelta(t, 2, p.ChatRateLimit, 1e-9)
		assert.Equal(t, 5, p.ChatRateBurst)
		assert.Equal(t, 15, p.RemotePollAttempts)
	})
}
