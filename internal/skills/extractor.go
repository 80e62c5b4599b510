// Package skills extracts the skill list of a job advertisement.
package skills

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/applykit/internal/llm"
	"github.com/jonathan/applykit/internal/prompts"
	"github.com/jonathan/applykit/internal/types"
)

// Completer is the part of the completion client the extractor uses.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error)
}

// Options tunes an Extractor.
type Options struct {
	// Dedupe drops case-insensitive repeats, keeping the first spelling.
	Dedupe bool
	Logger *slog.Logger
}

// Extractor turns a job advertisement into a SkillSet with one completion.
type Extractor struct {
	client Completer
	dedupe bool
	logger *slog.Logger
}

// NewExtractor creates an Extractor backed by client.
func NewExtractor(client Completer, opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client: client,
		dedupe: opts.Dedupe,
		logger: logger.With("component", "skills"),
	}
}

// Extract asks for technical and soft skills as a comma-separated list and
// returns the cleaned list in reply order. Backend failures are returned
// unchanged (*llm.GenerationError).
func (e *Extractor) Extract(ctx context.Context, jobAd string) (types.SkillSet, error) {
	if strings.TrimSpace(jobAd) == "" {
		return nil, types.ErrEmptyJobAd
	}

	prompt, err := prompts.Render(prompts.Generation, "extract-skills", map[string]string{"JobAd": jobAd})
	if err != nil {
		return nil, fmt.Errorf("failed to build skills prompt: %w", err)
	}

	reply, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	skills := ParseSkillList(reply, e.dedupe)
	e.logger.Debug("skills extracted", "count", len(skills))
	return skills, nil
}

// ParseSkillList splits a comma-separated reply into skills. Every element is
// trimmed and empty elements are dropped. Newlines also separate items and a
// leading list bullet or number ("1.", "2)") is removed, since models
// sometimes answer with a list.
func ParseSkillList(reply string, dedupe bool) types.SkillSet {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	skills := make(types.SkillSet, 0, len(fields))
	seen := make(map[string]bool)
	for _, f := range fields {
		s := cleanSkill(f)
		if s == "" {
			continue
		}
		if dedupe {
			key := strings.ToLower(s)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		skills = append(skills, s)
	}
	return skills
}

// listNumber matches "1. " or "2)" ahead of a non-digit, so "1.5x" survives.
var listNumber = regexp.MustCompile(`^\d+[.)]\s*(\D)`)

func cleanSkill(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•")
	s = listNumber.ReplaceAllString(strings.TrimSpace(s), "$1")
	s = strings.TrimRight(s, ".;")
	return strings.TrimFunc(s, unicode.IsSpace)
}
