package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain prose", "Led a team of five engineers", "Led a team of five engineers"},
		{"money and percent", "Saved $1M with 99.9% uptime", `Saved \$1M with 99.9\% uptime`},
		{"ampersand and hash", "R&D issue #12", `R\&D issue \#12`},
		{"identifiers", "user_id", `user\_id`},
		{"braces", "map{k}", `map\{k\}`},
		{"backslash is not double escaped", `C:\dir`, `C:\textbackslash{}dir`},
		{"text commands", "~5^2", `\textasciitilde{}5\textasciicircum{}2`},
		{"angle brackets and pipe", "<a|b>", `\textless{}a\textbar{}b\textgreater{}`},
		{"unicode passes through", "Zürich – résumé", "Zürich – résumé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}

func TestPlainText_Prose(t *testing.T) {
	assert.Equal(t, "line one\nline two", PlainText("  line one\r\nline two\n\n"))
}

func TestPlainText_LaTeX(t *testing.T) {
	src := `\documentclass{article}
\usepackage{geometry}
\begin{document}
\section*{Experience} % comment
\textbf{Acme Corp} -- Senior Engineer\\
\begin{itemize}
  \item Cut latency by 40\% with \emph{gRPC}
  \item Led R\&D team
\end{itemize}
\end{document}`

	got := PlainText(src)
	assert.Contains(t, got, "Experience")
	assert.Contains(t, got, "Acme Corp – Senior Engineer")
	assert.Contains(t, got, "• Cut latency by 40% with gRPC")
	assert.Contains(t, got, "• Led R&D team")
	assert.NotContains(t, got, `\`)
	assert.NotContains(t, got, "comment")
	assert.NotContains(t, got, "geometry")
}

func TestIsLaTeX(t *testing.T) {
	assert.True(t, IsLaTeX(`\section{Skills}`))
	assert.False(t, IsLaTeX("Dear Hiring Manager,"))
}
