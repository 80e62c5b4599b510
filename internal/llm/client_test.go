package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers through fn and counts calls.
type fakeBackend struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req Request, call int) (string, error)

	mu   sync.Mutex
	reqs []Request
}

func (f *fakeBackend) Name() Provider { return "fake" }

func (f *fakeBackend) Generate(ctx context.Context, req Request) (string, error) {
	n := int(f.calls.Add(1))
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.fn(ctx, req, n)
}

func newTestClient(t *testing.T, fb *fakeBackend, cfg Config) *Client {
	t.Helper()
	c, err := New(context.Background(), cfg, WithBackend(fb), WithRetryPolicy(fastPolicy(cfg.withDefaults().MaxAttempts)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestComplete_ReturnsText(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		return "echo: " + req.Prompt, nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	out, err := c.Complete(context.Background(), "hello", WithTemperature(0.2))
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", out)
	require.Len(t, fb.reqs, 1)
	assert.InDelta(t, 0.2, fb.reqs[0].Temperature, 1e-9)
	assert.Equal(t, DefaultModel, fb.reqs[0].Model)
}

func TestComplete_RetriesServiceUnavailable(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		if call == 1 {
			return "", &StatusError{StatusCode: 503}
		}
		return "ok", nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	out, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), fb.calls.Load())
}

func TestComplete_NotFoundIsSingleAttempt(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		return "", &StatusError{StatusCode: 404, Message: "model not found"}
	}}
	c := newTestClient(t, fb, DefaultConfig())

	_, err := c.Complete(context.Background(), "p")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 1, genErr.Attempts)
	assert.Equal(t, 404, genErr.StatusCode())
	assert.Equal(t, int32(1), fb.calls.Load())
}

func TestComplete_ExhaustedRetriesIsGenerationError(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		return "", &StatusError{StatusCode: 502}
	}}
	c := newTestClient(t, fb, DefaultConfig())

	_, err := c.Complete(context.Background(), "p")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 3, genErr.Attempts)
	assert.Equal(t, int32(3), fb.calls.Load())
}

func TestComplete_PerAttemptTimeout(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		if call == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "second try", nil
	}}
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	c := newTestClient(t, fb, cfg)

	out, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "second try", out)
}

func TestComplete_EmptyReplyFails(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		return "   ", nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	_, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleteMany_PreservesOrder(t *testing.T) {
	// Earlier prompts finish last.
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		var idx int
		_, _ = fmt.Sscanf(req.Prompt, "prompt-%d", &idx)
		time.Sleep(time.Duration(5-idx) * 10 * time.Millisecond)
		return strings.ToUpper(req.Prompt), nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	prompts := []string{"prompt-0", "prompt-1", "prompt-2", "prompt-3", "prompt-4"}
	out, err := c.CompleteMany(context.Background(), prompts)
	require.NoError(t, err)
	assert.Equal(t, []string{"PROMPT-0", "PROMPT-1", "PROMPT-2", "PROMPT-3", "PROMPT-4"}, out)
}

func TestCompleteMany_FailureFailsBatch(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		if req.Prompt == "bad" {
			return "", &StatusError{StatusCode: 400}
		}
		return "fine", nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	out, err := c.CompleteMany(context.Background(), []string{"a", "bad", "c"})
	assert.Nil(t, out)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 400, genErr.StatusCode())
}

func TestCompleteMany_Empty(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		return "x", nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	out, err := c.CompleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompleteEach_ReportsPerIndex(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		if req.Prompt == "bad" {
			return "", &StatusError{StatusCode: 401}
		}
		return "got " + req.Prompt, nil
	}}
	c := newTestClient(t, fb, DefaultConfig())

	results := c.CompleteEach(context.Background(), []string{"a", "bad", "c"})
	require.Len(t, results, 3)
	assert.Equal(t, "got a", results[0].Text)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "got c", results[2].Text)
	assert.NoError(t, results[2].Err)
}

func TestClose_Idempotent(t *testing.T) {
	fb := &fakeBackend{fn: func(ctx context.Context, req Request, call int) (string, error) {
		return "x", nil
	}}
	c, err := New(context.Background(), DefaultConfig(), WithBackend(fb))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Complete(context.Background(), "p")
	assert.True(t, errors.Is(err, ErrClientClosed))
	assert.Equal(t, int32(0), fb.calls.Load())
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), DefaultConfig())
	assert.ErrorContains(t, err, "API key is required")
}
