// Package pipeline provides the high-level orchestration of one generation run:
// skills, tailored CV and cover letters are produced concurrently from the same
// job advertisement and then rendered into documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonathan/applykit/internal/letters"
	"github.com/jonathan/applykit/internal/tailoring"
	"github.com/jonathan/applykit/internal/types"
)

// Artifact names, also used as progress steps.
const (
	StepSkills  = "skills"
	StepCV      = "cv"
	StepLetters = "letters"
	StepRender  = "render"
)

// Progress categories.
const (
	CategoryGeneration = "generation"
	CategoryRendering  = "rendering"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Failed   bool   `json:"failed,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. It may be called
// from several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// SkillExtractor produces the skill list of a job ad.
type SkillExtractor interface {
	Extract(ctx context.Context, jobAd string) (types.SkillSet, error)
}

// CVTailor produces the tailored CV for a job ad.
type CVTailor interface {
	Tailor(ctx context.Context, jobAd string) (*types.TailoredCV, error)
}

// LetterGenerator produces count cover letter variants.
type LetterGenerator interface {
	Generate(ctx context.Context, jobAd string, count int) ([]types.CoverLetter, error)
}

// RunOptions holds per-run settings.
type RunOptions struct {
	LetterCount int
	OnProgress  ProgressCallback
}

// Result holds every artifact of a run. An artifact whose generation failed
// is left empty and its error is recorded under its step name, except for
// recoverable failures (raw CV reply, partial letters) where both are kept.
type Result struct {
	JobAd   types.JobAd
	Skills  types.SkillSet
	CV      *types.TailoredCV
	Letters []types.CoverLetter
	Errors  map[string]error
}

// Err joins the per-artifact errors, or returns nil if every artifact
// succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, step := range []string{StepSkills, StepCV, StepLetters} {
		if err := r.Errors[step]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step, err))
		}
	}
	return errors.Join(errs...)
}

// Pipeline wires the three generators together.
type Pipeline struct {
	skills  SkillExtractor
	tailor  CVTailor
	letters LetterGenerator
	logger  *slog.Logger
}

// New creates a pipeline.
func New(skills SkillExtractor, tailor CVTailor, letters LetterGenerator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		skills:  skills,
		tailor:  tailor,
		letters: letters,
		logger:  logger.With("component", "pipeline"),
	}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, failed bool, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Failed:   failed,
			Content:  content,
		})
	}
}

// Run generates skills, CV and letters concurrently. The returned error is
// only set when the run could not start; artifact failures are reported in
// Result.Errors so that one failure never discards the others.
func (p *Pipeline) Run(ctx context.Context, ad types.JobAd, opts RunOptions) (*Result, error) {
	if ad.Empty() {
		return nil, types.ErrEmptyJobAd
	}
	if opts.LetterCount < 1 {
		return nil, fmt.Errorf("letter count must be at least 1, got %d", opts.LetterCount)
	}

	res := &Result{JobAd: ad, Errors: map[string]error{}}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	record := func(step string, err error) {
		mu.Lock()
		res.Errors[step] = err
		mu.Unlock()
		p.logger.Warn("artifact failed", "step", step, "error", err)
		emitProgress(&opts, step, CategoryGeneration, err.Error(), true, nil)
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		skills, err := p.skills.Extract(ctx, ad.Text)
		if err != nil {
			record(StepSkills, err)
			return
		}
		res.Skills = skills
		emitProgress(&opts, StepSkills, CategoryGeneration,
			fmt.Sprintf("Extracted %d skills", len(skills)), false, skills)
	}()

	go func() {
		defer wg.Done()
		cv, err := p.tailor.Tailor(ctx, ad.Text)
		var formatErr *tailoring.ContentFormatError
		if err != nil && !errors.As(err, &formatErr) {
			record(StepCV, err)
			return
		}
		// a format error still carries the raw reply as content
		res.CV = cv
		if err != nil {
			record(StepCV, err)
			return
		}
		emitProgress(&opts, StepCV, CategoryGeneration, "Tailored CV", false, cv.Analysis)
	}()

	go func() {
		defer wg.Done()
		out, err := p.letters.Generate(ctx, ad.Text, opts.LetterCount)
		var partial *letters.PartialError
		if err != nil && !errors.As(err, &partial) {
			record(StepLetters, err)
			return
		}
		res.Letters = out
		if err != nil {
			record(StepLetters, err)
			return
		}
		emitProgress(&opts, StepLetters, CategoryGeneration,
			fmt.Sprintf("Generated %d cover letters", len(out)), false, nil)
	}()

	wg.Wait()

	p.logger.Info("generation finished",
		"skills", len(res.Skills),
		"cv", res.CV != nil,
		"letters", len(res.Letters),
		"failed", len(res.Errors))
	return res, nil
}
