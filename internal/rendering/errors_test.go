package rendering

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/applykit/internal/types"
)

func TestRenderError_Message(t *testing.T) {
	cause := errors.New("disk full")

	assert.Equal(t, "render pdf: failed to write PDF: disk full",
		(&RenderError{Format: types.KindPDF, Message: "failed to write PDF", Cause: cause}).Error())
	assert.Equal(t, "render: no CV to render", (&RenderError{Message: "no CV to render"}).Error())
	assert.ErrorIs(t, &RenderError{Cause: cause}, cause)
}

func TestCompilationError_Summary(t *testing.T) {
	var log []string
	for i := 1; i <= 15; i++ {
		log = append(log, fmt.Sprintf("line %d", i))
	}
	err := &CompilationError{Message: "PDF was not generated", LogOutput: strings.Join(log, "\n")}

	summary := err.Summary()
	assert.True(t, strings.HasPrefix(summary, "pdflatex: PDF was not generated\n"))
	assert.Contains(t, summary, "line 6\n")
	assert.NotContains(t, summary, "line 5\n")
	assert.True(t, strings.HasSuffix(summary, "line 15"))

	assert.Equal(t, "pdflatex: x", (&CompilationError{Message: "x"}).Summary())
}
