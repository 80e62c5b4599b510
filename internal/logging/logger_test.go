package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func plainLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(NewColoredHandler(buf, &slog.HandlerOptions{Level: level}).WithoutColor())
}

func TestColoredHandler_FormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := plainLogger(&buf, slog.LevelInfo)

	logger.Info("generated letters", "count", 3, "tone", "professional")

	line := buf.String()
	assert.Contains(t, line, "INFO   generated letters")
	assert.Contains(t, line, "count=3")
	assert.Contains(t, line, `tone="professional"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestColoredHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := plainLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	var debugBuf bytes.Buffer
	New(&debugBuf, true).Debug("shown")
	assert.Contains(t, debugBuf.String(), "shown")
}

func TestColoredHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := plainLogger(&buf, slog.LevelInfo).With("component", "llm").WithGroup("req")

	logger.Info("attempt failed", "attempt", 2)

	line := buf.String()
	assert.Contains(t, line, `component="llm"`)
	assert.Contains(t, line, "req.attempt=2")
}

func TestColoredHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := plainLogger(&buf, slog.LevelInfo)

	ctx := WithRequestID(context.Background(), "abc123")
	logger.InfoContext(ctx, "handled")

	assert.Contains(t, buf.String(), "[abc123] handled")
	assert.Equal(t, "abc123", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestColoredHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewColoredHandler(&buf, nil)).Error("failed")
	assert.Contains(t, buf.String(), red)
	assert.Contains(t, buf.String(), reset)
}
