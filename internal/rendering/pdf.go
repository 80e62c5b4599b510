package rendering

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/applykit/internal/types"
)

const (
	mmPerInch = 25.4
	mmPerPt   = 0.3528
)

// PrintEngine produces the print-ready PDF for one document.
type PrintEngine interface {
	Name() string
	Render(ctx context.Context, content string, style types.Style) ([]byte, error)
}

// Print engine names accepted by EngineByName.
const (
	EngineFPDF  = "fpdf"
	EngineLaTeX = "latex"
)

// EngineByName returns the print engine registered under name.
func EngineByName(name string) (PrintEngine, error) {
	switch strings.ToLower(name) {
	case "", EngineFPDF:
		return FPDFEngine{}, nil
	case EngineLaTeX:
		return LaTeXEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown print engine %q", name)
	}
}

// FPDFEngine lays text out on A4 pages with one of the PDF core fonts.
type FPDFEngine struct{}

// Name implements PrintEngine.
func (FPDFEngine) Name() string { return EngineFPDF }

// Render implements PrintEngine.
func (FPDFEngine) Render(_ context.Context, content string, style types.Style) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(style.Margins.Left*mmPerInch, style.Margins.Top*mmPerInch, style.Margins.Right*mmPerInch)
	pdf.SetAutoPageBreak(true, style.Margins.Bottom*mmPerInch)
	pdf.AddPage()
	pdf.SetFont(coreFont(style.Font.Main), "", style.Font.Size)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineHeight := style.Font.Size * style.Spacing.LineSpacing * mmPerPt

	for _, line := range strings.Split(PlainText(content), "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(lineHeight)
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Format: types.KindPDF, Message: "failed to lay out PDF", Cause: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Format: types.KindPDF, Message: "failed to write PDF", Cause: err}
	}
	return buf.Bytes(), nil
}

// coreFont maps a font family name onto the closest PDF core font.
func coreFont(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"), strings.Contains(f, "consolas"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"), strings.Contains(f, "garamond"),
		strings.Contains(f, "cambria"), f == "serif":
		return "Times"
	default:
		return "Helvetica"
	}
}
