package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Empty(t, cfg.Model, "the model default depends on the final provider")
	assert.Equal(t, 2000, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.LetterCount)
	assert.Equal(t, "professional", cfg.Tone)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.AllowPartialLetters)
	assert.False(t, cfg.DedupeSkills)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("GPT_MODEL", "claude-3-5-sonnet-latest")
	t.Setenv("TEMPERATURE", "0.3")
	t.Setenv("MAX_COVER_LETTERS", "5")
	t.Setenv("LLM_TIMEOUT", "45")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SAVE_INTERMEDIATE", "true")
	t.Setenv("LETTERS_ALLOW_PARTIAL", "1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	cfg.ResolveProvider()

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "ak-test", cfg.APIKey)
	assert.Equal(t, "claude-3-5-sonnet-latest", cfg.Model)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
	assert.Equal(t, 5, cfg.LetterCount)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.SaveIntermediate)
	assert.True(t, cfg.AllowPartialLetters)

	llmCfg := cfg.LLM()
	assert.Equal(t, "ak-test", llmCfg.APIKey)
	assert.Equal(t, 45*time.Second, llmCfg.Timeout)
}

func TestFromEnv_BadValues(t *testing.T) {
	t.Setenv("MAX_TOKENS", "lots")
	t.Setenv("TOP_P", "high")

	_, err := FromEnv()
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "MAX_TOKENS")
	assert.Contains(t, err.Error(), "TOP_P")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.APIKey = "sk"
	require.NoError(t, cfg.Validate())

	noKey := Defaults()
	assert.ErrorContains(t, noKey.Validate(), "OPENAI_API_KEY")

	bad := Defaults()
	bad.APIKey = "sk"
	bad.LetterCount = 0
	var ce *ConfigurationError
	assert.ErrorAs(t, bad.Validate(), &ce)

	bad = Defaults()
	bad.APIKey = "sk"
	bad.PrintEngine = "word"
	assert.Error(t, bad.Validate())

	bad = Defaults()
	bad.APIKey = "sk"
	bad.SessionStore = "redis"
	bad.RedisURL = ""
	assert.Error(t, bad.Validate())
}

func TestValidateSettings_NoKeyNeeded(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.ValidateSettings())

	cfg.PrintEngine = "word"
	assert.Error(t, cfg.ValidateSettings())
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{"provider": "gemini", "letter_count": 4, "tone": "enthusiastic", "dedupe_skills": true}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 4, cfg.LetterCount)
	assert.True(t, cfg.DedupeSkills)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "config path is empty")

	_, err = LoadConfig("/nonexistent/path/config.json")
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ nope }`), 0644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config JSON")
}

func TestMergeWithDefaults(t *testing.T) {
	file := &Config{Tone: "warm", LetterCount: 2}
	base := Defaults()
	base.Model = "gpt-4.1"
	base.Debug = true

	merged := file.MergeWithDefaults(base)
	assert.Equal(t, "warm", merged.Tone)
	assert.Equal(t, 2, merged.LetterCount)
	assert.Equal(t, "gpt-4.1", merged.Model)
	assert.Equal(t, base.SessionTTL, merged.SessionTTL)
	assert.True(t, merged.Debug)
}

func TestMaxFileSize(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, int64(5*1024*1024), cfg.MaxFileSize())
}

func TestResolveProvider_KeyFollowsFinalProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Defaults()
	cfg.APIKey = "sk-openai"
	cfg.Provider = "Anthropic"
	cfg.ResolveProvider()
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Model)

	cfg = Defaults()
	cfg.Provider = "gemini"
	cfg.APIKey = "sk-openai"
	cfg.ResolveProvider()
	assert.Empty(t, cfg.APIKey, "another provider's key is never reused")
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Error(t, cfg.Validate())
}

func TestResolveProvider_KeepsExplicitModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	cfg := Defaults()
	cfg.Model = "gpt-4.1"
	cfg.ResolveProvider()
	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, "sk-openai", cfg.APIKey)
	require.NoError(t, cfg.Validate())
}
