// Package tailoring adapts the base CV to a job advertisement.
package tailoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/applykit/internal/llm"
	"github.com/jonathan/applykit/internal/prompts"
	"github.com/jonathan/applykit/internal/schemas"
	"github.com/jonathan/applykit/internal/types"
	schemafiles "github.com/jonathan/applykit/schemas"
)

// Completer is the part of the completion client the engine uses.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error)
}

// Engine tailors one base CV. The template and guide are fixed for the
// engine's lifetime.
type Engine struct {
	client   Completer
	template string
	guide    string
	logger   *slog.Logger
}

// NewEngine creates an Engine for the given base CV and tailoring guide.
func NewEngine(client Completer, template, guide string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:   client,
		template: template,
		guide:    guide,
		logger:   logger.With("component", "tailoring"),
	}
}

// reply is the structured answer requested by the tailor-cv prompt.
type reply struct {
	Content string `json:"content"`
	types.CVAnalysis
}

// Tailor issues exactly one completion and returns the tailored CV.
//
// When the reply is not valid structured output, Tailor returns a CV whose
// content is the raw reply together with a *ContentFormatError. Callers
// should keep the CV and report the error. Any other error means no CV.
func (e *Engine) Tailor(ctx context.Context, jobAd string) (*types.TailoredCV, error) {
	if strings.TrimSpace(jobAd) == "" {
		return nil, types.ErrEmptyJobAd
	}

	prompt, err := prompts.Render(prompts.Generation, "tailor-cv", map[string]string{
		"Guide":    e.guide,
		"Template": e.template,
		"JobAd":    jobAd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build tailoring prompt: %w", err)
	}

	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseReply(raw)
	if err != nil {
		e.logger.Warn("tailoring reply is not structured, using raw text", "error", err)
		return &types.TailoredCV{Content: strings.TrimSpace(raw), Template: e.template}, err
	}

	analysis := parsed.CVAnalysis
	analysis.QualityChecks = append(analysis.QualityChecks, Review(parsed.Content, e.template, analysis.Keywords)...)

	e.logger.Debug("CV tailored",
		"keywords", len(analysis.Keywords),
		"gaps", len(analysis.Gaps),
		"checks_passed", analysis.PassedChecks())

	return &types.TailoredCV{
		Content:  parsed.Content,
		Template: e.template,
		Analysis: &analysis,
	}, nil
}

// parseReply extracts, validates and decodes the structured reply.
func parseReply(raw string) (*reply, error) {
	payload := llm.CleanJSONBlock(raw)
	if !strings.HasPrefix(payload, "{") {
		return nil, &ContentFormatError{Message: "reply contains no JSON object", Raw: raw}
	}

	if err := schemas.Validate(schemafiles.TailoredCV, payload); err != nil {
		return nil, &ContentFormatError{Message: "reply does not match the CV schema", Raw: raw, Cause: err}
	}

	var r reply
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, &ContentFormatError{Message: "failed to decode CV reply", Raw: raw, Cause: err}
	}
	r.Content = strings.TrimSpace(r.Content)
	return &r, nil
}
