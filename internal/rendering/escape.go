package rendering

import (
	"regexp"
	"strings"
)

// latexEscaper maps characters that are special to LaTeX, or that the
// default OT1 font encoding prints as other glyphs, to their text commands.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
	`|`, `\textbar{}`,
)

// EscapeLaTeX makes arbitrary text safe to place in a LaTeX document body.
func EscapeLaTeX(text string) string {
	return latexEscaper.Replace(text)
}

var (
	latexCommentRe = regexp.MustCompile(`(?m)(^|[^\\])%.*$`)
	latexEnvRe     = regexp.MustCompile(`\\(begin|end)\{[^}]*\}(\{[^}]*\})*`)
	latexItemRe    = regexp.MustCompile(`\\item(\[[^\]]*\])?\s*`)
	latexCmdArgRe  = regexp.MustCompile(`\\[a-zA-Z]+\*?(\[[^\]]*\])?\{([^{}]*)\}`)
	latexCmdRe     = regexp.MustCompile(`\\[a-zA-Z]+\*?(\[[^\]]*\])?`)
	blankLinesRe   = regexp.MustCompile(`\n{3,}`)
)

// IsLaTeX reports whether content looks like LaTeX markup rather than prose.
func IsLaTeX(content string) bool {
	return strings.Contains(content, `\documentclass`) ||
		strings.Contains(content, `\section`) ||
		strings.Contains(content, `\begin{`)
}

// PlainText reduces LaTeX markup to readable text for the DOCX and fpdf
// renderers. Prose passes through with normalized line endings.
func PlainText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !IsLaTeX(content) {
		return strings.TrimSpace(content)
	}

	if i := strings.Index(content, `\begin{document}`); i >= 0 {
		content = content[i+len(`\begin{document}`):]
	}
	if i := strings.Index(content, `\end{document}`); i >= 0 {
		content = content[:i]
	}

	content = latexCommentRe.ReplaceAllString(content, "$1")
	content = strings.ReplaceAll(content, `\\`, "\n")
	content = latexEnvRe.ReplaceAllString(content, "")
	content = latexItemRe.ReplaceAllString(content, "• ")
	// Nested commands unwrap from the inside out.
	for latexCmdArgRe.MatchString(content) {
		content = latexCmdArgRe.ReplaceAllString(content, "$2")
	}
	content = latexCmdRe.ReplaceAllString(content, "")

	replacer := strings.NewReplacer(`\&`, "&", `\%`, "%", `\$`, "$", `\#`, "#", `\_`, "_", `\{`, "{", `\}`, "}", "~", " ", "--", "–")
	content = replacer.Replace(content)

	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	content = blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(content)
}
