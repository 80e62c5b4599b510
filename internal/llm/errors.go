package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned by a backend whose reply carried no text.
var ErrEmptyResponse = errors.New("empty response from LLM")

// StatusError is a non-2xx reply from the generation backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// GenerationError is returned when a completion could not be produced,
// either because the backend rejected it or because the retry budget ran out.
type GenerationError struct {
	Provider Provider
	Model    string
	Attempts int
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s/%s, %d attempt(s)): %v", e.Provider, e.Model, e.Attempts, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the backend status behind the failure, or 0 when the
// failure was not an HTTP status (network error, timeout, empty reply).
func (e *GenerationError) StatusCode() int {
	var se *StatusError
	if errors.As(e.Cause, &se) {
		return se.StatusCode
	}
	return 0
}

// BatchError identifies which prompt of a CompleteMany call failed.
type BatchError struct {
	Index int
	Cause error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("prompt %d: %v", e.Index, e.Cause)
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}
