package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// keepAliveInterval is how often an idle event stream gets a comment line so
// proxies do not close it while a long generation step runs.
const keepAliveInterval = 15 * time.Second

var errStreamingUnsupported = errors.New("streaming not supported")

// eventStream writes Server-Sent Events. Progress callbacks arrive from
// several goroutines, so every write holds mu.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// newEventStream commits a 200 text/event-stream response.
func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher, nextID: 1}, nil
}

// send writes one numbered event with a JSON payload.
func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// sendError reports a failed run. The status is what the plain JSON endpoint
// would have answered with.
func (s *eventStream) sendError(err error) error {
	return s.send("error", map[string]any{"error": err.Error(), "status": HTTPStatus(err)})
}

// keepAlive writes a comment line every interval until the returned stop
// function is called. stop waits for the writer goroutine to exit.
func (s *eventStream) keepAlive(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	var once sync.Once
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				_, err := fmt.Fprint(s.w, ": keep-alive\n\n")
				if err == nil {
					s.flusher.Flush()
				}
				s.mu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
