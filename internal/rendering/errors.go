// Package rendering turns generated text into an editable DOCX document and a
// print-ready PDF.
package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/applykit/internal/types"
)

// RenderError is a failure to produce one output format. Format is empty when
// the input itself could not be rendered at all.
type RenderError struct {
	Format  types.DocumentKind
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	prefix := "render"
	if e.Format != "" {
		prefix = "render " + string(e.Format)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// TemplateError means a user-supplied DOCX template or the built-in LaTeX
// layout could not be used.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template: %s: %v", e.Message, e.Cause)
	}
	return "template: " + e.Message
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// CompilationError is a pdflatex failure. LogOutput holds the compiler's
// combined output when it ran at all.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdflatex: %s: %v", e.Message, e.Cause)
	}
	return "pdflatex: " + e.Message
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// Summary returns the error with the last ten lines of the compiler log.
func (e *CompilationError) Summary() string {
	if e.LogOutput == "" {
		return e.Error()
	}
	lines := strings.Split(strings.TrimSpace(e.LogOutput), "\n")
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	return e.Error() + "\n" + strings.Join(lines, "\n")
}
