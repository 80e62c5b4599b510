package rendering

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/applykit/internal/types"
)

// ContentPlaceholder marks the paragraph of a Word template that receives the
// generated text. It must sit in a single run.
const ContentPlaceholder = "{{CONTENT}}"

const twipsPerInch = 1440

var paragraphPropsRe = regexp.MustCompile(`<w:pPr>.*?</w:pPr>`)

// RenderDocx fills the content placeholder of template with content, one
// paragraph per line. When template is nil a blank A4 document laid out from
// style is used instead.
func RenderDocx(content string, style types.Style, template []byte) ([]byte, error) {
	if template == nil {
		skeleton, err := docxSkeleton(style)
		if err != nil {
			return nil, err
		}
		template = skeleton
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, &TemplateError{Message: "failed to read DOCX template", Cause: err}
	}
	defer doc.Close()

	editable := doc.Editable()
	body := editable.GetContent()

	para, err := placeholderParagraph(body)
	if err != nil {
		return nil, err
	}
	props := paragraphPropsRe.FindString(para)
	editable.ReplaceRaw(para, paragraphsXML(content, props), 1)

	var buf bytes.Buffer
	if err := editable.Write(&buf); err != nil {
		return nil, &RenderError{Format: types.KindDocx, Message: "failed to write DOCX", Cause: err}
	}
	return buf.Bytes(), nil
}

// DocxText returns the text of a DOCX document, one line per paragraph.
func DocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	defer doc.Close()

	dec := xml.NewDecoder(strings.NewReader(doc.Editable().GetContent()))
	var (
		out    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			if t.Name.Local == "p" {
				out.WriteByte('\n')
			}
			inText = false
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

// placeholderParagraph returns the complete <w:p> element holding the
// content placeholder.
func placeholderParagraph(body string) (string, error) {
	idx := strings.Index(body, ContentPlaceholder)
	if idx < 0 {
		return "", &TemplateError{Message: fmt.Sprintf("DOCX template has no %s placeholder", ContentPlaceholder)}
	}

	start := max(strings.LastIndex(body[:idx], "<w:p>"), strings.LastIndex(body[:idx], "<w:p "))
	if start < 0 {
		return "", &TemplateError{Message: "placeholder is not inside a paragraph"}
	}
	end := strings.Index(body[idx:], "</w:p>")
	if end < 0 {
		return "", &TemplateError{Message: "placeholder paragraph is not closed"}
	}
	return body[start : idx+end+len("</w:p>")], nil
}

// paragraphsXML converts text into WordprocessingML paragraphs carrying the
// given paragraph properties.
func paragraphsXML(content, props string) string {
	var sb strings.Builder
	for _, line := range strings.Split(PlainText(content), "\n") {
		sb.WriteString("<w:p>")
		sb.WriteString(props)
		if line != "" {
			sb.WriteString(`<w:r><w:t xml:space="preserve">`)
			_ = xml.EscapeText(&sb, []byte(line))
			sb.WriteString("</w:t></w:r>")
		}
		sb.WriteString("</w:p>")
	}
	return sb.String()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p><w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body>
</w:document>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/><w:sz w:val="%[2]d"/><w:szCs w:val="%[2]d"/></w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="%[3]d" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>
</w:styles>`

// docxSkeleton builds a minimal single-section DOCX package whose page
// margins, default font and line spacing come from style.
func docxSkeleton(style types.Style) ([]byte, error) {
	twips := func(in float64) int { return int(math.Round(in * twipsPerInch)) }

	var fontName bytes.Buffer
	_ = xml.EscapeText(&fontName, []byte(style.Font.Main))

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", fmt.Sprintf(documentXML, ContentPlaceholder,
			twips(style.Margins.Top), twips(style.Margins.Right), twips(style.Margins.Bottom), twips(style.Margins.Left))},
		{"word/styles.xml", fmt.Sprintf(stylesXML, fontName.String(),
			int(math.Round(style.Font.Size*2)), int(math.Round(style.Spacing.LineSpacing*240)))},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, &RenderError{Format: types.KindDocx, Message: "failed to build DOCX package", Cause: err}
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, &RenderError{Format: types.KindDocx, Message: "failed to build DOCX package", Cause: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &RenderError{Format: types.KindDocx, Message: "failed to build DOCX package", Cause: err}
	}
	return buf.Bytes(), nil
}
