package types

// DocumentPair holds one rendered artifact in both output formats.
type DocumentPair struct {
	Editable   []byte `json:"-"` // DOCX
	PrintReady []byte `json:"-"` // PDF
	Pages      int    `json:"pages,omitempty"`
}

// DocumentKind names the two output formats.
type DocumentKind string

// Document kinds, also used as file extensions.
const (
	KindDocx DocumentKind = "docx"
	KindPDF  DocumentKind = "pdf"
)

// Bytes returns the payload for kind, or nil for an unknown kind.
func (p *DocumentPair) Bytes(kind DocumentKind) []byte {
	switch kind {
	case KindDocx:
		return p.Editable
	case KindPDF:
		return p.PrintReady
	default:
		return nil
	}
}

// ContentType returns the MIME type for kind.
func (k DocumentKind) ContentType() string {
	switch k {
	case KindDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case KindPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
