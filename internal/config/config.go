// Package config loads application settings from the environment, an
// optional JSON file and CLI flags, and reads the user's template assets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/applykit/internal/llm"
)

// Config holds every tunable of the application. Durations are only settable
// from the environment or flags.
type Config struct {
	// Generation backend
	Provider    string        `json:"provider,omitempty" validate:"oneof=openai gemini anthropic"`
	APIKey      string        `json:"-"`
	BaseURL     string        `json:"base_url,omitempty" validate:"omitempty,url"`
	Model       string        `json:"model,omitempty"` // empty: provider default
	MaxTokens   int           `json:"max_tokens,omitempty" validate:"gte=1"`
	Temperature float64       `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	TopP        float64       `json:"top_p,omitempty" validate:"gte=0,lte=1"`
	Timeout     time.Duration `json:"-" validate:"gt=0"`
	MaxAttempts int           `json:"max_attempts,omitempty" validate:"gte=1,lte=10"`
	RateLimit   int           `json:"rate_limit,omitempty" validate:"gte=0"` // requests per minute

	// Assets
	CVPath           string `json:"cv_path,omitempty" validate:"required"`
	GuidePath        string `json:"guide_path,omitempty" validate:"required"`
	ExamplesPath     string `json:"examples_path,omitempty" validate:"required"`
	StylePath        string `json:"style_path,omitempty" validate:"required"`
	DocxTemplatePath string `json:"docx_template_path,omitempty"`

	// Generation behavior
	Tone                string `json:"tone,omitempty" validate:"required"`
	LetterCount         int    `json:"letter_count,omitempty" validate:"gte=1,lte=10"`
	AllowPartialLetters bool   `json:"allow_partial_letters,omitempty"`
	DedupeSkills        bool   `json:"dedupe_skills,omitempty"`

	// Rendering and export
	PrintEngine      string `json:"print_engine,omitempty" validate:"oneof=fpdf latex"`
	OutputDir        string `json:"output_dir,omitempty" validate:"required"`
	S3Bucket         string `json:"s3_bucket,omitempty"`
	S3Prefix         string `json:"s3_prefix,omitempty"`
	S3Endpoint       string `json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3Region         string `json:"s3_region,omitempty"`
	S3AccessKey      string `json:"-" validate:"required_with=S3SecretKey"`
	S3SecretKey      string `json:"-" validate:"required_with=S3AccessKey"`
	MaxFileSizeMB    int    `json:"max_file_size_mb,omitempty" validate:"gte=1"`
	SaveIntermediate bool   `json:"save_intermediate,omitempty"`
	Debug            bool   `json:"debug,omitempty"`

	// Sessions and HTTP API
	SessionStore    string        `json:"session_store,omitempty" validate:"oneof=memory redis"`
	RedisURL        string        `json:"redis_url,omitempty" validate:"required_if=SessionStore redis"`
	SessionTTL      time.Duration `json:"-" validate:"gt=0"`
	ServerAddr      string        `json:"server_addr,omitempty"`
	ServerRateLimit int           `json:"server_rate_limit,omitempty" validate:"gte=0"` // requests per minute per client
}

// Defaults returns the documented default settings.
func Defaults() Config {
	return Config{
		Provider:        string(llm.ProviderOpenAI),
		MaxTokens:       llm.DefaultMaxTokens,
		Temperature:     llm.DefaultTemperature,
		TopP:            llm.DefaultTopP,
		Timeout:         llm.DefaultTimeout,
		MaxAttempts:     llm.DefaultMaxAttempts,
		CVPath:          "user_data/cv/user_cv.tex",
		GuidePath:       "user_data/templates/cv_tailoring_guide.md",
		ExamplesPath:    "user_data/cover_letters/style_examples.md",
		StylePath:       "user_data/style/user_style.yaml",
		Tone:            "professional",
		LetterCount:     3,
		PrintEngine:     "fpdf",
		OutputDir:       "output",
		MaxFileSizeMB:   5,
		SessionStore:    "memory",
		RedisURL:        "redis://localhost:6379/0",
		SessionTTL:      2 * time.Hour,
		ServerAddr:      ":8080",
		ServerRateLimit: 60,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks ranges and enumerations and requires an API key for the
// selected provider. It does not touch the filesystem; LoadAssets does that.
func (c *Config) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return &ConfigurationError{Message: fmt.Sprintf("no API key set for provider %s (%s)", c.Provider, apiKeyEnv(c.Provider))}
	}
	return nil
}

// ValidateSettings is Validate without the API key requirement, for
// commands that never call the generation backend.
func (c *Config) ValidateSettings() error {
	if err := validate.Struct(c); err != nil {
		return &ConfigurationError{Message: "invalid settings", Cause: err}
	}
	return nil
}

// MaxFileSize returns the export size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// LLM returns the completion client settings.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:          llm.Provider(c.Provider),
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Model:             c.Model,
		MaxTokens:         c.MaxTokens,
		Temperature:       c.Temperature,
		TopP:              c.TopP,
		Timeout:           c.Timeout,
		MaxAttempts:       c.MaxAttempts,
		RequestsPerMinute: c.RateLimit,
	}
}

// LoadConfig loads a JSON settings file. Fields left out of the file stay
// zero; combine with MergeWithDefaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// MergeWithDefaults returns c with zero fields filled from defaults. Booleans
// can only be switched on by c.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.BaseURL, defaults.BaseURL)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.CVPath, defaults.CVPath)
	mergeString(&result.GuidePath, defaults.GuidePath)
	mergeString(&result.ExamplesPath, defaults.ExamplesPath)
	mergeString(&result.StylePath, defaults.StylePath)
	mergeString(&result.DocxTemplatePath, defaults.DocxTemplatePath)
	mergeString(&result.Tone, defaults.Tone)
	mergeString(&result.PrintEngine, defaults.PrintEngine)
	mergeString(&result.OutputDir, defaults.OutputDir)
	mergeString(&result.S3Bucket, defaults.S3Bucket)
	mergeString(&result.S3Prefix, defaults.S3Prefix)
	mergeString(&result.S3Endpoint, defaults.S3Endpoint)
	mergeString(&result.S3Region, defaults.S3Region)
	mergeString(&result.SessionStore, defaults.SessionStore)
	mergeString(&result.RedisURL, defaults.RedisURL)
	mergeString(&result.ServerAddr, defaults.ServerAddr)

	mergeInt(&result.MaxTokens, defaults.MaxTokens)
	mergeInt(&result.MaxAttempts, defaults.MaxAttempts)
	mergeInt(&result.RateLimit, defaults.RateLimit)
	mergeInt(&result.LetterCount, defaults.LetterCount)
	mergeInt(&result.MaxFileSizeMB, defaults.MaxFileSizeMB)
	mergeInt(&result.ServerRateLimit, defaults.ServerRateLimit)

	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.TopP == 0 {
		result.TopP = defaults.TopP
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}

	result.AllowPartialLetters = result.AllowPartialLetters || defaults.AllowPartialLetters
	result.DedupeSkills = result.DedupeSkills || defaults.DedupeSkills
	result.SaveIntermediate = result.SaveIntermediate || defaults.SaveIntermediate
	result.Debug = result.Debug || defaults.Debug

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
