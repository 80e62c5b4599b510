package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applykit/internal/types"
)

// Document names besides the per-letter "letter-N".
const (
	DocCV       = "cv"
	DocCVReport = "cv-report"
)

// maxConcurrentRenders bounds parallel renders; the LaTeX engine starts one
// pdflatex process per document.
const maxConcurrentRenders = 4

// DocumentRenderer renders artifacts into document pairs.
type DocumentRenderer interface {
	RenderCV(ctx context.Context, cv *types.TailoredCV) (*types.DocumentPair, error)
	RenderLetter(ctx context.Context, letter types.CoverLetter) (*types.DocumentPair, error)
	RenderReport(ctx context.Context, analysis *types.CVAnalysis) (*types.DocumentPair, error)
}

// Documents maps a document name to its rendered pair.
type Documents map[string]*types.DocumentPair

// Names returns the document names in a stable order: cv, cv-report, then
// letters by version.
func (d Documents) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := docRank(names[i]), docRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

func docRank(name string) int {
	switch {
	case name == DocCV:
		return 0
	case name == DocCVReport:
		return 1
	case strings.HasPrefix(name, "letter-"):
		// keep letter-10 after letter-9
		return 2 + len(name)
	default:
		return 100
	}
}

// ErrUnknownDocument is returned for a document name the result cannot produce.
var ErrUnknownDocument = errors.New("unknown document")

// RenderJob is one document to render.
type RenderJob struct {
	Name   string
	render func(ctx context.Context) (*types.DocumentPair, error)
}

// Jobs lists every document that can be rendered from res.
func Jobs(r DocumentRenderer, res *Result) []RenderJob {
	var jobs []RenderJob
	if res.CV != nil && strings.TrimSpace(res.CV.Content) != "" {
		cv := res.CV
		jobs = append(jobs, RenderJob{Name: DocCV, render: func(ctx context.Context) (*types.DocumentPair, error) {
			return r.RenderCV(ctx, cv)
		}})
		if cv.Analysis != nil && !cv.Analysis.Empty() {
			jobs = append(jobs, RenderJob{Name: DocCVReport, render: func(ctx context.Context) (*types.DocumentPair, error) {
				return r.RenderReport(ctx, cv.Analysis)
			}})
		}
	}
	for _, letter := range res.Letters {
		jobs = append(jobs, RenderJob{Name: letter.Name(), render: func(ctx context.Context) (*types.DocumentPair, error) {
			return r.RenderLetter(ctx, letter)
		}})
	}
	return jobs
}

// RenderDocument renders the single named document of res.
func RenderDocument(ctx context.Context, r DocumentRenderer, res *Result, name string) (*types.DocumentPair, error) {
	for _, job := range Jobs(r, res) {
		if job.Name == name {
			return job.render(ctx)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnknownDocument)
}

// RenderDocuments renders every available artifact of res. A failed document
// does not stop the others; failures are joined into the returned error.
func RenderDocuments(ctx context.Context, r DocumentRenderer, res *Result, onProgress ProgressCallback) (Documents, error) {
	opts := RunOptions{OnProgress: onProgress}
	jobs := Jobs(r, res)

	docs := make(Documents, len(jobs))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentRenders)
	for _, job := range jobs {
		g.Go(func() error {
			pair, err := job.render(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
				emitProgress(&opts, StepRender, CategoryRendering, fmt.Sprintf("Rendering %s failed: %v", job.Name, err), true, nil)
				return nil
			}
			docs[job.Name] = pair
			emitProgress(&opts, StepRender, CategoryRendering, fmt.Sprintf("Rendered %s", job.Name), false, job.Name)
			return nil
		})
	}
	_ = g.Wait() // workers report through errs

	return docs, errors.Join(errs...)
}
