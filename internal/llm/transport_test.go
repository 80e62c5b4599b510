package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_PrivacyHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	hc := NewHTTPClient(TransportConfig{Timeout: time.Second, Headers: map[string]string{"X-Extra": "1"}})
	assert.Nil(t, hc.Jar)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Cookie", "session=abc")
	req.Header.Set("OpenAI-Organization", "org-123")

	resp, err := hc.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	for k, v := range PrivacyHeaders {
		assert.Equal(t, v, got.Get(k), k)
	}
	assert.Equal(t, "1", got.Get("X-Extra"))
	assert.Empty(t, got.Get("Cookie"))
	assert.Empty(t, got.Get("OpenAI-Organization"))
	// The caller's request is left untouched.
	assert.Equal(t, "session=abc", req.Header.Get("Cookie"))
}

func TestNewHTTPClient_PoolLimits(t *testing.T) {
	hc := NewHTTPClient(TransportConfig{})
	pt, ok := hc.Transport.(*privacyTransport)
	require.True(t, ok)
	base, ok := pt.base.(*http.Transport)
	require.True(t, ok)

	assert.Equal(t, 10, base.MaxConnsPerHost)
	assert.Equal(t, 5, base.MaxIdleConns)
	assert.Equal(t, 5, base.MaxIdleConnsPerHost)
}

// chatHandler mimics the chat completions endpoint. failFirst controls the
// status of the first request.
func chatHandler(t *testing.T, failFirst int, calls *atomic.Int32, body *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		if body != nil {
			_ = json.Unmarshal(raw, body)
		}
		assert.Equal(t, "private", r.Header.Get("X-Session-Type"))

		w.Header().Set("Content-Type", "application/json")
		if n == 1 && failFirst != 0 {
			w.WriteHeader(failFirst)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream says no","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Kubernetes, gRPC"},"finish_reason":"stop"}]}`))
	}
}

func newOpenAITestClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = url + "/v1"
	c, err := New(context.Background(), cfg, WithRetryPolicy(fastPolicy(3)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenAIBackend_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	var body map[string]any
	srv := httptest.NewServer(chatHandler(t, http.StatusServiceUnavailable, &calls, &body))
	defer srv.Close()

	c := newOpenAITestClient(t, srv.URL)
	out, err := c.Complete(context.Background(), "list skills")
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes, gRPC", out)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, "gpt-4.1-mini", body["model"])
	assert.NotContains(t, body, "user")
}

func TestOpenAIBackend_NotFoundNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(chatHandler(t, http.StatusNotFound, &calls, nil))
	defer srv.Close()

	c := newOpenAITestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "list skills")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, http.StatusNotFound, genErr.StatusCode())
	assert.Equal(t, ProviderOpenAI, genErr.Provider)
	assert.Equal(t, int32(1), calls.Load())
}
