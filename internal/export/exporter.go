package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jonathan/applykit/internal/config"
	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/types"
)

// FileTooLargeError is returned for a document above the configured limit.
type FileTooLargeError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s is %d bytes, above the %d byte limit", e.Name, e.Size, e.Limit)
}

// Exporter writes the output of a run to a sink.
type Exporter struct {
	sink             Sink
	maxSize          int64
	saveIntermediate bool
	logger           *slog.Logger
}

// New creates an exporter. A maxSize of zero disables the size check.
func New(sink Sink, maxSize int64, saveIntermediate bool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		sink:             sink,
		maxSize:          maxSize,
		saveIntermediate: saveIntermediate,
		logger:           logger.With("component", "export"),
	}
}

// FromConfig picks the S3 sink when a bucket is configured and the output
// directory otherwise.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Exporter, error) {
	var sink Sink = DirSink{Root: cfg.OutputDir}
	if cfg.S3Bucket != "" {
		s3Sink, err := NewS3Sink(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		sink = s3Sink
	}
	return New(sink, cfg.MaxFileSize(), cfg.SaveIntermediate, logger), nil
}

// Export writes every document of docs under runName and, when intermediate
// output is enabled, the generated text of res. It keeps going after a
// failed object and returns the written locations with the joined errors.
func (e *Exporter) Export(ctx context.Context, runName string, docs pipeline.Documents, res *pipeline.Result) ([]string, error) {
	var (
		locations []string
		errs      []error
	)
	put := func(key string, data []byte, contentType string) {
		if e.maxSize > 0 && int64(len(data)) > e.maxSize {
			errs = append(errs, &FileTooLargeError{Name: key, Size: int64(len(data)), Limit: e.maxSize})
			return
		}
		loc, err := e.sink.Put(ctx, path.Join(runName, key), data, contentType)
		if err != nil {
			errs = append(errs, err)
			return
		}
		locations = append(locations, loc)
	}

	for _, name := range docs.Names() {
		pair := docs[name]
		for _, kind := range []types.DocumentKind{types.KindDocx, types.KindPDF} {
			if data := pair.Bytes(kind); len(data) > 0 {
				put(name+"."+string(kind), data, kind.ContentType())
			}
		}
	}

	if e.saveIntermediate && res != nil {
		texts := intermediate(res)
		keys := make([]string, 0, len(texts))
		for key := range texts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			put(key, []byte(texts[key]), "text/plain; charset=utf-8")
		}
		if res.CV != nil && res.CV.Analysis != nil {
			data, err := json.MarshalIndent(res.CV.Analysis, "", "  ")
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to marshal CV analysis: %w", err))
			} else {
				put("cv-analysis.json", data, "application/json")
			}
		}
	}

	e.logger.Info("export finished", "run", runName, "written", len(locations), "failed", len(errs))
	return locations, errors.Join(errs...)
}

// intermediate returns the raw text artifacts keyed by file name.
func intermediate(res *pipeline.Result) map[string]string {
	out := map[string]string{}
	if len(res.Skills) > 0 {
		out["skills.txt"] = strings.Join(res.Skills, "\n") + "\n"
	}
	if res.CV != nil && res.CV.Content != "" {
		out["cv.txt"] = res.CV.Content
	}
	for _, l := range res.Letters {
		out[l.Name()+".txt"] = l.Content
	}
	return out
}
