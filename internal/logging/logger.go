// Package logging configures the process-wide slog logger with a colored
// terminal handler.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	reset     = "\033[0m"
	red       = "\033[31m"
	green     = "\033[32m"
	yellow    = "\033[33m"
	magenta   = "\033[35m"
	cyan      = "\033[36m"
	white     = "\033[37m"
	boldBlue  = "\033[1;34m"
	boldWhite = "\033[1;37m"
)

var levelColors = map[slog.Level]string{
	slog.LevelDebug: cyan,
	slog.LevelInfo:  green,
	slog.LevelWarn:  yellow,
	slog.LevelError: red,
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDAttr is the attribute key printed as a bracketed prefix.
const RequestIDAttr = "request_id"

// ColoredHandler writes one colored line per record: time, level, request
// id, message, then key=value attributes.
type ColoredHandler struct {
	opts    slog.HandlerOptions
	out     io.Writer
	mu      *sync.Mutex
	attrs   []slog.Attr
	group   string
	noColor bool
}

// NewColoredHandler creates a handler writing to w.
func NewColoredHandler(w io.Writer, opts *slog.HandlerOptions) *ColoredHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColoredHandler{opts: *opts, out: w, mu: &sync.Mutex{}}
}

// WithoutColor disables ANSI escapes, for files and tests.
func (h *ColoredHandler) WithoutColor() *ColoredHandler {
	c := *h
	c.noColor = true
	return &c
}

func (h *ColoredHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ColoredHandler) color(code, s string) string {
	if h.noColor {
		return s
	}
	return code + s + reset
}

func (h *ColoredHandler) Handle(ctx context.Context, r slog.Record) error {
	levelColor, ok := levelColors[r.Level]
	if !ok {
		levelColor = white
	}

	var line strings.Builder
	line.WriteString(h.color(magenta, r.Time.Format("15:04:05.000")))
	line.WriteByte(' ')
	line.WriteString(h.color(levelColor, fmt.Sprintf("%-6s", strings.ToUpper(r.Level.String()))))
	line.WriteByte(' ')

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	reqID := GetRequestID(ctx)
	for _, a := range attrs {
		if a.Key == RequestIDAttr {
			reqID = a.Value.String()
		}
	}
	if reqID != "" {
		line.WriteString(h.color(boldBlue, "["+reqID+"]"))
		line.WriteByte(' ')
	}

	line.WriteString(h.color(boldWhite, r.Message))

	for _, a := range attrs {
		if a.Key == RequestIDAttr {
			continue
		}
		val := a.Value.Resolve().String()
		if a.Value.Kind() == slog.KindString {
			val = fmt.Sprintf("%q", val)
		}
		line.WriteByte(' ')
		line.WriteString(h.color(yellow, a.Key))
		line.WriteByte('=')
		line.WriteString(val)
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

func (h *ColoredHandler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func (h *ColoredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return &c
}

func (h *ColoredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return &c
}

// New returns a logger writing colored lines to w. Debug lowers the level
// from info to debug.
func New(w io.Writer, debug bool) *slog.Logger {
	return slog.New(newHandler(w, debug))
}

func newHandler(w io.Writer, debug bool) *ColoredHandler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return NewColoredHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs the colored handler on stderr as the default logger. A
// non-empty NO_COLOR environment variable turns colors off.
func Setup(debug bool) *slog.Logger {
	h := newHandler(os.Stderr, debug)
	if os.Getenv("NO_COLOR") != "" {
		h = h.WithoutColor()
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// GetRequestID returns the request id stored in ctx, if any.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID stores a request id for the handler to print.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
