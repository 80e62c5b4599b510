// Package ingestion turns a raw job advertisement (pasted text, a file or a
// posting URL) into the normalized JobAd consumed by the generators.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/applykit/internal/types"
)

var (
	multiSpace  = regexp.MustCompile(`[ \t]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	bulletStart = regexp.MustCompile(`^[•·▪‣◦]\s*`)
)

// CleanText normalizes line endings, collapses runs of spaces, rewrites
// unicode bullets to "- " and keeps at most one blank line between blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine keeps list indentation and headings, and collapses internal whitespace.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return multiSpace.ReplaceAllString(trimmed, " ")
	}

	if bulletStart.MatchString(trimmed) {
		trimmed = "- " + bulletStart.ReplaceAllString(trimmed, "")
	}

	body := multiSpace.ReplaceAllString(trimmed, " ")
	if isBulletLine(trimmed) {
		if indent := len(line) - len(trimmed); indent > 0 {
			return strings.Repeat(" ", indent) + body
		}
	}
	return body
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}

// FromText normalizes pasted job ad text.
func FromText(text string) (types.JobAd, *Source, error) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return types.JobAd{}, nil, types.ErrEmptyJobAd
	}
	return types.JobAd{Text: cleaned}, newSource(cleaned, "", ""), nil
}

// FromFile reads a text file and normalizes its content.
func FromFile(path string) (types.JobAd, *Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.JobAd{}, nil, fmt.Errorf("file not found: %w", err)
		}
		return types.JobAd{}, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return FromText(string(content))
}
