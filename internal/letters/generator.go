// Package letters generates cover letter variants for a job advertisement.
package letters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/applykit/internal/llm"
	"github.com/jonathan/applykit/internal/prompts"
	"github.com/jonathan/applykit/internal/types"
)

// BatchCompleter is the part of the completion client the generator uses.
type BatchCompleter interface {
	CompleteMany(ctx context.Context, prompts []string, opts ...llm.CallOption) ([]string, error)
	CompleteEach(ctx context.Context, prompts []string, opts ...llm.CallOption) []llm.Result
}

// Options configures a Generator.
type Options struct {
	Examples string // style example corpus embedded in every prompt
	Tone     string
	// AllowPartial returns the letters that succeeded with a *PartialError
	// instead of failing the whole run.
	AllowPartial bool
	Logger       *slog.Logger
}

// Generator produces independently generated letter variants.
type Generator struct {
	client       BatchCompleter
	examples     string
	tone         string
	allowPartial bool
	logger       *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client BatchCompleter, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tone := opts.Tone
	if tone == "" {
		tone = "professional"
	}
	return &Generator{
		client:       client,
		examples:     opts.Examples,
		tone:         tone,
		allowPartial: opts.AllowPartial,
		logger:       logger.With("component", "letters"),
	}
}

// Generate returns exactly count letters with versions 1..count in order.
// All prompts are sent concurrently and nothing is retried here. Without
// AllowPartial any failure fails the run with the backend's
// *llm.GenerationError.
func (g *Generator) Generate(ctx context.Context, jobAd string, count int) ([]types.CoverLetter, error) {
	if count < 1 {
		return nil, fmt.Errorf("letter count must be at least 1, got %d", count)
	}
	if strings.TrimSpace(jobAd) == "" {
		return nil, types.ErrEmptyJobAd
	}

	batch, err := g.buildPrompts(jobAd, count)
	if err != nil {
		return nil, err
	}

	if g.allowPartial {
		return g.generatePartial(ctx, batch)
	}

	replies, err := g.client.CompleteMany(ctx, batch)
	if err != nil {
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, err
	}

	letters := make([]types.CoverLetter, len(replies))
	for i, reply := range replies {
		letters[i] = types.CoverLetter{Content: strings.TrimSpace(reply), Version: i + 1}
	}
	g.logger.Debug("cover letters generated", "count", len(letters))
	return letters, nil
}

// generatePartial keeps successful variants. Their versions still reflect
// their position in the request.
func (g *Generator) generatePartial(ctx context.Context, batch []string) ([]types.CoverLetter, error) {
	results := g.client.CompleteEach(ctx, batch)

	letters := make([]types.CoverLetter, 0, len(results))
	failed := make(map[int]error)
	for i, r := range results {
		if r.Err != nil {
			failed[i+1] = r.Err
			continue
		}
		letters = append(letters, types.CoverLetter{Content: strings.TrimSpace(r.Text), Version: i + 1})
	}

	if len(failed) == 0 {
		return letters, nil
	}
	perr := &PartialError{Requested: len(batch), Failed: failed}
	if len(letters) == 0 {
		// Nothing to show: report the first failure as the run's error.
		return nil, perr.Failed[perr.FailedVersions()[0]]
	}
	g.logger.Warn("some cover letters failed", "failed", perr.FailedVersions(), "succeeded", len(letters))
	return letters, perr
}

func (g *Generator) buildPrompts(jobAd string, count int) ([]string, error) {
	batch := make([]string, count)
	for i := range batch {
		p, err := prompts.Render(prompts.Generation, "cover-letter", map[string]string{
			"Tone":     g.tone,
			"Examples": g.examples,
			"JobAd":    jobAd,
			"Version":  strconv.Itoa(i + 1),
			"Count":    strconv.Itoa(count),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build cover letter prompt: %w", err)
		}
		batch[i] = p
	}
	return batch, nil
}
