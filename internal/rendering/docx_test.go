package rendering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applykit/internal/types"
)

func TestRenderDocx_RoundTripsText(t *testing.T) {
	out, err := RenderDocx("Jane Doe\n\nGo engineer & mentor <team lead>", types.DefaultStyle(), nil)
	require.NoError(t, err)

	text, err := DocxText(out)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nGo engineer & mentor <team lead>", text)
}

func TestRenderDocx_AppliesStyle(t *testing.T) {
	style := types.DefaultStyle()
	style.Margins.Left = 0.5
	style.Font.Main = "Georgia"
	style.Font.Size = 12
	style.Spacing.LineSpacing = 1.5

	skeleton, err := docxSkeleton(style)
	require.NoError(t, err)

	files := unzip(t, skeleton)
	assert.Contains(t, files["word/document.xml"], `w:left="720"`)
	assert.Contains(t, files["word/document.xml"], `w:top="1440"`)
	assert.Contains(t, files["word/styles.xml"], `w:ascii="Georgia"`)
	assert.Contains(t, files["word/styles.xml"], `<w:sz w:val="24"/>`)
	assert.Contains(t, files["word/styles.xml"], `w:line="360"`)
}

func TestRenderDocx_TemplateWithoutPlaceholder(t *testing.T) {
	filled, err := RenderDocx("already filled", types.DefaultStyle(), nil)
	require.NoError(t, err)

	_, err = RenderDocx("new content", types.DefaultStyle(), filled)
	require.Error(t, err)
	var tmplErr *TemplateError
	assert.True(t, errors.As(err, &tmplErr))
}

func TestRenderDocx_InvalidTemplate(t *testing.T) {
	_, err := RenderDocx("content", types.DefaultStyle(), []byte("not a zip"))
	var tmplErr *TemplateError
	require.True(t, errors.As(err, &tmplErr))
	assert.Contains(t, tmplErr.Message, "failed to read DOCX template")
}

func TestPlaceholderParagraph_KeepsParagraphProperties(t *testing.T) {
	body := `<w:body><w:p><w:r><w:t>Header</w:t></w:r></w:p>` +
		`<w:p w:rsidR="1"><w:pPr><w:jc w:val="both"/></w:pPr><w:r><w:t>{{CONTENT}}</w:t></w:r></w:p></w:body>`

	para, err := placeholderParagraph(body)
	require.NoError(t, err)
	assert.Equal(t, `<w:p w:rsidR="1"><w:pPr><w:jc w:val="both"/></w:pPr><w:r><w:t>{{CONTENT}}</w:t></w:r></w:p>`, para)

	props := paragraphPropsRe.FindString(para)
	xml := paragraphsXML("one\ntwo", props)
	assert.Equal(t,
		`<w:p><w:pPr><w:jc w:val="both"/></w:pPr><w:r><w:t xml:space="preserve">one</w:t></w:r></w:p>`+
			`<w:p><w:pPr><w:jc w:val="both"/></w:pPr><w:r><w:t xml:space="preserve">two</w:t></w:r></w:p>`,
		xml)
}

func TestParagraphsXML_DoesNotMatchParagraphProperties(t *testing.T) {
	body := `<w:p><w:pPr><w:spacing/></w:pPr><w:r><w:t>{{CONTENT}}</w:t></w:r></w:p>`
	para, err := placeholderParagraph(body)
	require.NoError(t, err)
	assert.Equal(t, body, para)
}
