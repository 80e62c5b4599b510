package ratelimit

import "time"

// EndpointConfig is the limit applied to one endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig returns the API limits. generationPerMinute bounds the endpoints
// that call the generation backend; 0 disables rate limiting altogether.
func NewConfig(generationPerMinute int) *Config {
	if generationPerMinute <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(generationPerMinute),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits.
func DefaultEndpointConfigs(generationPerMinute int) []EndpointConfig {
	burst := max(1, generationPerMinute/10)
	return []EndpointConfig{
		// Generation: one request fans out to several backend calls
		{Path: "/sessions", Method: "POST", Limit: generationPerMinute, Window: time.Minute, Burst: burst},
		{Path: "/sessions/stream", Method: "POST", Limit: generationPerMinute, Window: time.Minute, Burst: burst},

		// Edits and on-demand rendering
		{Path: "/sessions/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/sessions/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},
	}
}
