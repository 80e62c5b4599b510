package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrClientClosed is returned for calls made after Close.
var ErrClientClosed = errors.New("llm client is closed")

// Backend sends one prompt to one provider. Implementations report HTTP
// failures as *StatusError so the retry policy can classify them.
type Backend interface {
	Name() Provider
	Generate(ctx context.Context, req Request) (string, error)
}

// Client is the completion client shared by every component of a process.
// It is safe for concurrent use.
type Client struct {
	cfg        Config
	backend    Backend
	retry      RetryPolicy
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
}

// ClientOption customizes a Client at construction.
type ClientOption func(*Client)

// WithBackend replaces the provider backend, mainly for tests.
func WithBackend(b Backend) ClientOption {
	return func(c *Client) { c.backend = b }
}

// WithRetryPolicy replaces the retry policy derived from Config.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// New builds a Client and its pooled HTTP transport. The caller must Close it.
func New(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	retry := DefaultRetryPolicy()
	retry.MaxAttempts = cfg.MaxAttempts

	c := &Client{
		cfg:    cfg,
		retry:  retry,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "llm")

	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	if c.backend != nil {
		return c, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %s", cfg.Provider)
	}

	tc := TransportConfig{
		Timeout:      cfg.Timeout,
		MaxConns:     cfg.MaxConns,
		MaxIdleConns: cfg.MaxIdleConns,
	}
	switch cfg.Provider {
	case ProviderGemini:
		tc.Headers = map[string]string{"x-goog-api-key": cfg.APIKey}
		c.httpClient = NewHTTPClient(tc)
		b, err := newGeminiBackend(ctx, cfg, c.httpClient)
		if err != nil {
			return nil, err
		}
		c.backend = b
	case ProviderAnthropic:
		c.httpClient = NewHTTPClient(tc)
		c.backend = newAnthropicBackend(cfg, c.httpClient)
	default:
		c.httpClient = NewHTTPClient(tc)
		c.backend = newOpenAIBackend(cfg, c.httpClient)
	}
	return c, nil
}

// Config returns the client-wide settings after defaults were applied.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) request(prompt string, opts []CallOption) Request {
	req := Request{
		Model:       c.cfg.Model,
		Prompt:      prompt,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Complete sends one prompt and returns the generated text. Each attempt
// gets its own timeout; failures that survive the retry policy come back as
// *GenerationError.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	req := c.request(prompt, opts)
	provider := c.backend.Name()

	if c.closed.Load() {
		return "", &GenerationError{Provider: provider, Model: req.Model, Cause: ErrClientClosed}
	}

	start := time.Now()
	var text string
	attempts, err := c.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		out, err := c.backend.Generate(attemptCtx, req)
		if err != nil {
			c.logger.Debug("attempt failed", "provider", provider, "model", req.Model, "attempt", attempt, "error", err)
			return err
		}
		if strings.TrimSpace(out) == "" {
			return ErrEmptyResponse
		}
		text = out
		return nil
	})
	if err != nil {
		return "", &GenerationError{Provider: provider, Model: req.Model, Attempts: attempts, Cause: err}
	}

	c.logger.Debug("completion finished",
		"provider", provider,
		"model", req.Model,
		"attempts", attempts,
		"duration", time.Since(start),
		"chars", len(text))
	return text, nil
}

// CompleteMany sends all prompts concurrently and returns the replies in
// prompt order. If any prompt fails the whole batch fails with the first
// error, wrapped in *BatchError. A slow or failing prompt does not cancel
// its siblings.
func (c *Client) CompleteMany(ctx context.Context, prompts []string, opts ...CallOption) ([]string, error) {
	results := make([]string, len(prompts))
	var g errgroup.Group
	for i, prompt := range prompts {
		g.Go(func() error {
			out, err := c.Complete(ctx, prompt, opts...)
			if err != nil {
				return &BatchError{Index: i, Cause: err}
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Result is one entry of a CompleteEach batch.
type Result struct {
	Text string
	Err  error
}

// CompleteEach is CompleteMany without the all-or-nothing rule: every prompt
// gets its own Result, in prompt order.
func (c *Client) CompleteEach(ctx context.Context, prompts []string, opts ...CallOption) []Result {
	results := make([]Result, len(prompts))
	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.Complete(ctx, prompt, opts...)
			results[i] = Result{Text: out, Err: err}
		}()
	}
	wg.Wait()
	return results
}

// Close releases the pooled connections and any provider resources.
// It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if closer, ok := c.backend.(io.Closer); ok {
			err = closer.Close()
		}
		if c.httpClient != nil {
			c.httpClient.CloseIdleConnections()
		}
	})
	return err
}
