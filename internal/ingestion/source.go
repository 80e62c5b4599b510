package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jonathan/applykit/internal/fetch"
)

// Source describes where a job ad came from. Digest fingerprints the
// cleaned text, so the same posting fetched twice gets the same digest.
type Source struct {
	URL      string         `json:"url,omitempty"`
	Platform fetch.Platform `json:"platform,omitempty"`
	Received time.Time      `json:"received"`
	Digest   string         `json:"digest"`
	Chars    int            `json:"chars"`
}

func newSource(cleaned, url string, platform fetch.Platform) *Source {
	sum := sha256.Sum256([]byte(cleaned))
	return &Source{
		URL:      url,
		Platform: platform,
		Received: time.Now().UTC(),
		Digest:   hex.EncodeToString(sum[:]),
		Chars:    utf8.RuneCountInString(cleaned),
	}
}

// ShortDigest returns the first 12 hex digits of the digest.
func (s *Source) ShortDigest() string {
	if len(s.Digest) < 12 {
		return s.Digest
	}
	return s.Digest[:12]
}

// LogValue implements slog.LogValuer.
func (s *Source) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("digest", s.ShortDigest()),
		slog.Int("chars", s.Chars),
	}
	if s.URL != "" {
		attrs = append(attrs, slog.String("url", s.URL), slog.String("platform", string(s.Platform)))
	}
	return slog.GroupValue(attrs...)
}
