package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAITemperature(t *testing.T) {
	assert.Greater(t, openAITemperature(0), float32(0))
	assert.InDelta(t, 0, openAITemperature(0), 1e-30)
	assert.InDelta(t, 0.7, openAITemperature(0.7), 1e-6)
}

func TestOpenAIBackend_SendsZeroTemperature(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	b := newOpenAIBackend(Config{APIKey: "test", BaseURL: server.URL}, server.Client())
	out, err := b.Generate(context.Background(), Request{Model: "gpt-4.1-mini", Prompt: "hi", Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	temp, ok := body["temperature"]
	require.True(t, ok, "temperature omitted from request")
	assert.InDelta(t, 0, temp, 1e-30)
}
