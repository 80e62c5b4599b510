package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applykit/internal/session"
)

// plainWriter hides the recorder's Flush method.
type plainWriter struct{ http.ResponseWriter }

func TestEventStream_RequiresFlusher(t *testing.T) {
	_, err := newEventStream(plainWriter{httptest.NewRecorder()})
	assert.ErrorIs(t, err, errStreamingUnsupported)
}

func TestEventStream_NumbersEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := newEventStream(rec)
	require.NoError(t, err)

	require.NoError(t, stream.send("progress", map[string]string{"step": "skills"}))
	require.NoError(t, stream.sendError(session.ErrNotFound))

	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.Equal(t,
		"id: 1\nevent: progress\ndata: {\"step\":\"skills\"}\n\n"+
			"id: 2\nevent: error\ndata: {\"error\":\""+session.ErrNotFound.Error()+"\",\"status\":404}\n\n",
		rec.Body.String())
}

func TestEventStream_EncodeError(t *testing.T) {
	stream, err := newEventStream(httptest.NewRecorder())
	require.NoError(t, err)

	err = stream.send("progress", func() {})
	require.Error(t, err)
	assert.Equal(t, 1, stream.nextID, "a failed event does not consume an id")
}

func TestEventStream_KeepAlive(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := newEventStream(rec)
	require.NoError(t, err)

	stop := stream.keepAlive(5 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	stop()
	stop()

	assert.GreaterOrEqual(t, strings.Count(rec.Body.String(), ": keep-alive\n\n"), 1)
}
