package rendering

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/jonathan/applykit/internal/types"
)

// CompilationTimeout is the maximum time to wait for one pdflatex run.
const CompilationTimeout = 30 * time.Second

const documentTemplate = `\documentclass[{{.FontSize}}pt]{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage[a4paper,top={{.Top}}in,bottom={{.Bottom}}in,left={{.Left}}in,right={{.Right}}in]{geometry}
\usepackage{setspace}
{{- if .Family}}
\renewcommand{\familydefault}{\{{.Family}}default}
{{- end}}
\setlength{\parindent}{0pt}
\setlength{\parskip}{0.6em}
\pagestyle{empty}
\begin{document}
\setstretch{ {{- .LineSpacing -}} }
{{range .Paragraphs}}{{escape .}}

{{end}}\end{document}
`

var latexDoc = template.Must(template.New("document").Funcs(template.FuncMap{
	"escape": func(p string) string {
		return strings.ReplaceAll(EscapeLaTeX(p), "\n", "\\\\\n")
	},
}).Parse(documentTemplate))

// LaTeXEngine compiles documents with pdflatex. Content that is already a
// complete LaTeX document is compiled as-is, anything else is escaped and
// wrapped in an article laid out from the style.
type LaTeXEngine struct{}

// Name implements PrintEngine.
func (LaTeXEngine) Name() string { return EngineLaTeX }

// Render implements PrintEngine.
func (LaTeXEngine) Render(ctx context.Context, content string, style types.Style) ([]byte, error) {
	source := content
	if !strings.Contains(content, `\documentclass`) {
		var err error
		source, err = BuildLaTeXDocument(content, style)
		if err != nil {
			return nil, err
		}
	}
	pdf, _, err := CompileLaTeX(ctx, source)
	return pdf, err
}

// BuildLaTeXDocument wraps plain text in a LaTeX article.
func BuildLaTeXDocument(content string, style types.Style) (string, error) {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	data := struct {
		FontSize                 int
		Top, Bottom, Left, Right float64
		Family                   string
		LineSpacing              float64
		Paragraphs               []string
	}{
		FontSize:    latexFontSize(style.Font.Size),
		Top:         style.Margins.Top,
		Bottom:      style.Margins.Bottom,
		Left:        style.Margins.Left,
		Right:       style.Margins.Right,
		Family:      latexFamily(style.Font.Main),
		LineSpacing: style.Spacing.LineSpacing,
		Paragraphs:  paragraphs,
	}

	var buf bytes.Buffer
	if err := latexDoc.Execute(&buf, data); err != nil {
		return "", &TemplateError{Message: "failed to execute LaTeX template", Cause: err}
	}
	return buf.String(), nil
}

// CompileLaTeX runs pdflatex on source in a scratch directory and returns the
// PDF bytes and the compiler log.
func CompileLaTeX(ctx context.Context, source string) ([]byte, string, error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return nil, "", &CompilationError{
			Message: "pdflatex not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, "", &CompilationError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer os.RemoveAll(workDir)

	texPath := filepath.Join(workDir, "document.tex")
	if err := os.WriteFile(texPath, []byte(source), 0644); err != nil {
		return nil, "", &CompilationError{Message: "failed to write LaTeX source", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, CompilationTimeout)
	defer cancel()

	// nonstopmode keeps pdflatex from waiting on stdin after an error
	cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", "-output-directory", workDir, texPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	logOutput := stdout.String() + stderr.String()

	pdf, err := os.ReadFile(filepath.Join(workDir, "document.pdf"))
	if err != nil {
		return nil, logOutput, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	if runErr != nil {
		return pdf, logOutput, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	return pdf, logOutput, nil
}

// latexFontSize rounds to the nearest size the article class accepts.
func latexFontSize(pt float64) int {
	switch {
	case pt < 10.5:
		return 10
	case pt < 11.5:
		return 11
	default:
		return 12
	}
}

func latexFamily(family string) string {
	switch coreFont(family) {
	case "Helvetica":
		return "sf"
	case "Courier":
		return "tt"
	default:
		return ""
	}
}
