package ingestion

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applykit/internal/fetch"
)

func TestNewSource(t *testing.T) {
	before := time.Now().UTC()
	src := newSource("Senior Go Engineer – Zürich", "https://boards.greenhouse.io/acme/jobs/1", fetch.PlatformGreenhouse)

	assert.Len(t, src.Digest, 64)
	assert.Equal(t, 27, src.Chars, "chars counts runes, not bytes")
	assert.Equal(t, fetch.PlatformGreenhouse, src.Platform)
	assert.False(t, src.Received.Before(before))
}

func TestSource_DigestIsStable(t *testing.T) {
	a := newSource("same text", "", "")
	b := newSource("same text", "https://example.com", fetch.PlatformUnknown)
	c := newSource("other text", "", "")

	assert.Equal(t, a.Digest, b.Digest)
	assert.NotEqual(t, a.Digest, c.Digest)
	assert.Equal(t, a.Digest[:12], a.ShortDigest())
	assert.Equal(t, "abc", (&Source{Digest: "abc"}).ShortDigest())
}

func TestSource_JSONOmitsEmptyOrigin(t *testing.T) {
	data, err := json.Marshal(newSource("text", "", ""))
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"url"`)
	assert.NotContains(t, string(data), `"platform"`)
	assert.Contains(t, string(data), `"digest"`)
}

func TestSource_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("ingested", "source", newSource("posting", "https://jobs.lever.co/acme/1", fetch.PlatformLever))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	group, ok := entry["source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "lever", group["platform"])
	assert.Len(t, group["digest"], 12)
	assert.EqualValues(t, 7, group["chars"])

	buf.Reset()
	logger.Info("ingested", "source", newSource("pasted", "", ""))
	assert.NotContains(t, buf.String(), "platform")
}
