package rendering

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applykit/internal/types"
)

type stubEngine struct {
	calls   []string
	styles  []types.Style
	err     error
	payload []byte
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Render(_ context.Context, content string, style types.Style) ([]byte, error) {
	s.calls = append(s.calls, content)
	s.styles = append(s.styles, style)
	return s.payload, s.err
}

func TestRenderer_EditThenRerenderReflectsNewContent(t *testing.T) {
	r := NewRenderer(types.DefaultStyleGuide())
	cv := &types.TailoredCV{Content: "Jane Doe\nPython developer", Template: "base"}

	first, err := r.RenderCV(context.Background(), cv)
	require.NoError(t, err)
	text, err := DocxText(first.Editable)
	require.NoError(t, err)
	assert.Contains(t, text, "Python developer")

	cv.Content = "Jane Doe\nGo developer"
	second, err := r.RenderCV(context.Background(), cv)
	require.NoError(t, err)

	text, err = DocxText(second.Editable)
	require.NoError(t, err)
	assert.Contains(t, text, "Go developer")
	assert.NotContains(t, text, "Python developer")

	pdfText, err := PDFText(second.PrintReady)
	require.NoError(t, err)
	assert.Contains(t, pdfText, "Go developer")
	assert.Equal(t, 1, second.Pages)
}

func TestRenderer_UsesStylePerDocumentKind(t *testing.T) {
	guide := types.DefaultStyleGuide()
	guide.CoverLetter.Font.Size = 12

	engine := &stubEngine{payload: []byte("%PDF-stub")}
	r := NewRenderer(guide, WithPrintEngine(engine))

	_, err := r.RenderCV(context.Background(), &types.TailoredCV{Content: "cv"})
	require.NoError(t, err)
	_, err = r.RenderLetter(context.Background(), types.CoverLetter{Content: "letter", Version: 2})
	require.NoError(t, err)

	require.Len(t, engine.styles, 2)
	assert.Equal(t, 11.0, engine.styles[0].Font.Size)
	assert.Equal(t, 12.0, engine.styles[1].Font.Size)
	assert.Equal(t, []string{"cv", "letter"}, engine.calls)
}

func TestRenderer_PageCountFailureIsNotFatal(t *testing.T) {
	r := NewRenderer(types.DefaultStyleGuide(), WithPrintEngine(&stubEngine{payload: []byte("%PDF-stub")}))

	pair, err := r.Render(context.Background(), "content", types.DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, 0, pair.Pages)
	assert.Equal(t, []byte("%PDF-stub"), pair.PrintReady)
	assert.NotEmpty(t, pair.Editable)
}

func TestRenderer_EngineErrorNamesLetter(t *testing.T) {
	boom := &CompilationError{Message: "boom"}
	r := NewRenderer(types.DefaultStyleGuide(), WithPrintEngine(&stubEngine{err: boom}))

	_, err := r.RenderLetter(context.Background(), types.CoverLetter{Content: "text", Version: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letter-3")
	var compErr *CompilationError
	assert.True(t, errors.As(err, &compErr))
}

func TestRenderer_EmptyContent(t *testing.T) {
	r := NewRenderer(types.DefaultStyleGuide())

	_, err := r.RenderCV(context.Background(), &types.TailoredCV{Content: "  \n"})
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))

	_, err = r.RenderCV(context.Background(), nil)
	assert.True(t, errors.As(err, &renderErr))

	_, err = r.RenderReport(context.Background(), nil)
	assert.True(t, errors.As(err, &renderErr))
}

func TestRenderer_Report(t *testing.T) {
	analysis := &types.CVAnalysis{
		Keywords:    []string{"Go", "Kubernetes"},
		Gaps:        []string{"gRPC"},
		Suggestions: []string{"Mention mentoring"},
		QualityChecks: []types.QualityCheck{
			{Name: "quantified impact", Passed: true},
			{Name: "keyword coverage", Passed: false, Note: "1/2 keywords present"},
		},
	}

	pair, err := NewRenderer(types.DefaultStyleGuide()).RenderReport(context.Background(), analysis)
	require.NoError(t, err)

	text, err := DocxText(pair.Editable)
	require.NoError(t, err)
	assert.Contains(t, text, "• Kubernetes")
	assert.Contains(t, text, "Quality checks (1/2 passed)")
	assert.Contains(t, text, "• [FAIL] keyword coverage: 1/2 keywords present")
}

func TestFormatReport_SkipsEmptySections(t *testing.T) {
	got := FormatReport(&types.CVAnalysis{Keywords: []string{"Go"}})
	assert.Equal(t, "CV Analysis\n\nMatched keywords\n• Go", got)
}
