package rendering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/applykit/internal/types"
)

// Renderer turns generated artifacts into document pairs. It holds only
// read-only configuration and is safe for concurrent use.
type Renderer struct {
	style        types.StyleGuide
	docxTemplate []byte
	engine       PrintEngine
	logger       *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDocxTemplate uses a Word template holding ContentPlaceholder instead of
// the generated blank document.
func WithDocxTemplate(template []byte) Option {
	return func(r *Renderer) {
		if len(template) > 0 {
			r.docxTemplate = template
		}
	}
}

// WithPrintEngine selects the PDF engine. The default is FPDFEngine.
func WithPrintEngine(engine PrintEngine) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a renderer for the given style guide.
func NewRenderer(style types.StyleGuide, opts ...Option) *Renderer {
	r := &Renderer{
		style:  style,
		engine: FPDFEngine{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "rendering", "engine", r.engine.Name())
	return r
}

// RenderCV renders the current content of cv with the CV style.
func (r *Renderer) RenderCV(ctx context.Context, cv *types.TailoredCV) (*types.DocumentPair, error) {
	if cv == nil {
		return nil, &RenderError{Message: "no CV to render"}
	}
	return r.Render(ctx, cv.Content, r.style.CV)
}

// RenderLetter renders one cover letter with the cover letter style.
func (r *Renderer) RenderLetter(ctx context.Context, letter types.CoverLetter) (*types.DocumentPair, error) {
	pair, err := r.Render(ctx, letter.Content, r.style.CoverLetter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", letter.Name(), err)
	}
	return pair, nil
}

// RenderReport renders the CV analysis as a standalone document.
func (r *Renderer) RenderReport(ctx context.Context, analysis *types.CVAnalysis) (*types.DocumentPair, error) {
	if analysis == nil {
		return nil, &RenderError{Message: "no CV analysis to render"}
	}
	return r.Render(ctx, FormatReport(analysis), r.style.CV)
}

// Render produces both formats for content. The print-ready document goes
// through the configured engine, so a LaTeX CV keeps its own layout there
// while the editable copy carries its plain text.
func (r *Renderer) Render(ctx context.Context, content string, style types.Style) (*types.DocumentPair, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &RenderError{Message: "nothing to render: content is empty"}
	}

	editable, err := RenderDocx(content, style, r.docxTemplate)
	if err != nil {
		return nil, err
	}

	printReady, err := r.engine.Render(ctx, content, style)
	if err != nil {
		return nil, err
	}

	pair := &types.DocumentPair{Editable: editable, PrintReady: printReady}
	if pages, err := CountPages(printReady); err != nil {
		r.logger.Debug("page count unavailable", "error", err)
	} else {
		pair.Pages = pages
	}

	r.logger.Debug("rendered document", "docx_bytes", len(editable), "pdf_bytes", len(printReady), "pages", pair.Pages)
	return pair, nil
}

// FormatReport lays out a CV analysis as plain text.
func FormatReport(a *types.CVAnalysis) string {
	var sb strings.Builder
	sb.WriteString("CV Analysis\n")

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s\n", title)
		for _, item := range items {
			fmt.Fprintf(&sb, "• %s\n", item)
		}
	}
	section("Matched keywords", a.Keywords)
	section("Gaps", a.Gaps)
	section("Suggestions", a.Suggestions)

	if len(a.QualityChecks) > 0 {
		fmt.Fprintf(&sb, "\nQuality checks (%d/%d passed)\n", a.PassedChecks(), len(a.QualityChecks))
		for _, c := range a.QualityChecks {
			status := "PASS"
			if !c.Passed {
				status = "FAIL"
			}
			if c.Note != "" {
				fmt.Fprintf(&sb, "• [%s] %s: %s\n", status, c.Name, c.Note)
			} else {
				fmt.Fprintf(&sb, "• [%s] %s\n", status, c.Name)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
