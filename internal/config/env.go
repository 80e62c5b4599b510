package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/applykit/internal/llm"
)

// apiKeyEnv names the variable holding the key for a provider.
func apiKeyEnv(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// FromEnv builds a Config from Defaults and the process environment.
// Unparseable values are reported together as one ConfigurationError.
// Provider-derived settings are left to ResolveProvider.
func FromEnv() (Config, error) {
	cfg := Defaults()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := parseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("LLM_PROVIDER", &cfg.Provider)
	cfg.Provider = strings.ToLower(cfg.Provider)
	str("LLM_BASE_URL", &cfg.BaseURL)
	str("GPT_MODEL", &cfg.Model)
	str("LLM_MODEL", &cfg.Model)
	integer("MAX_TOKENS", &cfg.MaxTokens)
	float("TEMPERATURE", &cfg.Temperature)
	float("TOP_P", &cfg.TopP)
	duration("LLM_TIMEOUT", &cfg.Timeout)
	integer("LLM_MAX_ATTEMPTS", &cfg.MaxAttempts)
	integer("LLM_RATE_LIMIT", &cfg.RateLimit)

	str("USER_CV_PATH", &cfg.CVPath)
	str("CV_GUIDE_PATH", &cfg.GuidePath)
	str("LETTER_EXAMPLES_PATH", &cfg.ExamplesPath)
	str("USER_STYLE_PATH", &cfg.StylePath)
	str("DOCX_TEMPLATE_PATH", &cfg.DocxTemplatePath)

	str("COVER_LETTER_TONE", &cfg.Tone)
	integer("MAX_COVER_LETTERS", &cfg.LetterCount)
	boolean("LETTERS_ALLOW_PARTIAL", &cfg.AllowPartialLetters)
	boolean("SKILLS_DEDUPE", &cfg.DedupeSkills)

	str("PRINT_ENGINE", &cfg.PrintEngine)
	str("OUTPUT_DIR", &cfg.OutputDir)
	str("OUTPUT_S3_BUCKET", &cfg.S3Bucket)
	str("OUTPUT_S3_PREFIX", &cfg.S3Prefix)
	str("OUTPUT_S3_ENDPOINT", &cfg.S3Endpoint)
	str("OUTPUT_S3_REGION", &cfg.S3Region)
	str("OUTPUT_S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("OUTPUT_S3_SECRET_KEY", &cfg.S3SecretKey)
	integer("MAX_FILE_SIZE", &cfg.MaxFileSizeMB)
	boolean("SAVE_INTERMEDIATE", &cfg.SaveIntermediate)
	boolean("DEBUG_MODE", &cfg.Debug)

	str("SESSION_STORE", &cfg.SessionStore)
	str("REDIS_URL", &cfg.RedisURL)
	duration("SESSION_TTL", &cfg.SessionTTL)
	str("SERVER_ADDR", &cfg.ServerAddr)
	integer("SERVER_RATE_LIMIT", &cfg.ServerRateLimit)

	if len(errs) > 0 {
		return cfg, &ConfigurationError{Message: "invalid environment", Cause: errors.Join(errs...)}
	}
	return cfg, nil
}

// parseDuration accepts Go durations ("45s") and bare seconds ("45").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// ResolveProvider derives the provider-specific settings once every layer
// (environment, file, flags) has been applied. The API key is read from the
// final provider's variable only, and an unset model gets that provider's
// default.
func (c *Config) ResolveProvider() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.APIKey = strings.TrimSpace(os.Getenv(apiKeyEnv(c.Provider)))
	if c.Model == "" {
		c.Model = llm.DefaultModelFor(llm.Provider(c.Provider))
	}
}
