// Package llm provides the completion client used by every generation step.
// It hides the provider SDKs behind a single Backend interface and owns the
// transport policy: pooled connections, per-attempt timeouts, bounded retry
// and privacy headers on every outbound request.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is any OpenAI-compatible chat completions endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// Default client-wide settings.
const (
	DefaultModel        = "gpt-4.1-mini"
	DefaultMaxTokens    = 2000
	DefaultTemperature  = 0.7
	DefaultTopP         = 0.9
	DefaultTimeout      = 30 * time.Second
	DefaultMaxAttempts  = 3
	DefaultMaxConns     = 10
	DefaultMaxIdleConns = 5
)

// defaultModels is used when Config.Model is empty.
var defaultModels = map[Provider]string{
	ProviderOpenAI:    DefaultModel,
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// DefaultModelFor returns the model used for a provider when none is
// configured, or "" for an unknown provider.
func DefaultModelFor(p Provider) string {
	return defaultModels[p]
}

// Config holds the client-wide settings. Every sampling field can be
// overridden per call with a CallOption.
type Config struct {
	Provider    Provider
	APIKey      string
	BaseURL     string // optional endpoint override (OpenAI-compatible gateways)
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64

	Timeout           time.Duration // per attempt
	MaxAttempts       int
	RequestsPerMinute int // 0 disables client-side rate limiting
	MaxConns          int
	MaxIdleConns      int
}

// DefaultConfig returns the default configuration (OpenAI-compatible backend)
func DefaultConfig() Config {
	return Config{
		Provider:     ProviderOpenAI,
		Model:        DefaultModel,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		TopP:         DefaultTopP,
		Timeout:      DefaultTimeout,
		MaxAttempts:  DefaultMaxAttempts,
		MaxConns:     DefaultMaxConns,
		MaxIdleConns: DefaultMaxIdleConns,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.MaxConns == 0 {
		c.MaxConns = d.MaxConns
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	return c
}

// Validate checks the provider name and numeric ranges.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic, "":
	default:
		return fmt.Errorf("unsupported LLM provider %q", c.Provider)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be within [0, 1], got %v", c.TopP)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be non-negative")
	}
	return nil
}

// Request is a single-prompt generation request as seen by a Backend.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// CallOption overrides a client-wide setting for one call.
type CallOption func(*Request)

// WithModel overrides the model identifier.
func WithModel(model string) CallOption {
	return func(r *Request) { r.Model = model }
}

// WithMaxTokens overrides the maximum output length.
func WithMaxTokens(n int) CallOption {
	return func(r *Request) { r.MaxTokens = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) CallOption {
	return func(r *Request) { r.Temperature = t }
}

// WithTopP overrides the nucleus-sampling threshold.
func WithTopP(p float64) CallOption {
	return func(r *Request) { r.TopP = p }
}
