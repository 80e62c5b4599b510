package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/applykit/internal/export"
	"github.com/jonathan/applykit/internal/observability"
	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render edited CV and letter text files without generating anything",
	Long: `Renders hand-edited text (for example the cv.txt and letter-N.txt files written
with SAVE_INTERMEDIATE=true) into DOCX and PDF documents using the configured
style guide and print engine. No backend call is made and no API key is needed.`,
	RunE: runRender,
}

var (
	renderCV      string
	renderLetters []string
	renderName    string
)

func init() {
	renderCmd.Flags().StringVar(&renderCV, "cv", "", "Path to the CV text")
	renderCmd.Flags().StringSliceVar(&renderLetters, "letter", nil, "Path to a cover letter text (repeatable)")
	renderCmd.Flags().StringVar(&renderName, "name", "edited", "Prefix of the export folder")
	renderCmd.MarkFlagsOneRequired("cv", "letter")
	rootCmd.AddCommand(renderCmd)
}

var letterVersion = regexp.MustCompile(`letter-(\d+)`)

// readEdited builds a result from edited files. Letters named letter-N keep
// version N; others are numbered in flag order after the highest one.
func readEdited(cvPath string, letterPaths []string) (*pipeline.Result, error) {
	res := &pipeline.Result{}
	if cvPath != "" {
		content, err := os.ReadFile(cvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CV: %w", err)
		}
		res.CV = &types.TailoredCV{Content: string(content)}
	}

	used := map[int]bool{}
	var unnumbered []string
	for _, p := range letterPaths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read letter: %w", err)
		}
		m := letterVersion.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			unnumbered = append(unnumbered, string(content))
			continue
		}
		v, _ := strconv.Atoi(m[1])
		if v < 1 || used[v] {
			return nil, fmt.Errorf("duplicate or invalid letter version in %s", p)
		}
		used[v] = true
		res.Letters = append(res.Letters, types.CoverLetter{Content: string(content), Version: v})
	}

	next := 1
	for _, content := range unnumbered {
		for used[next] {
			next++
		}
		used[next] = true
		res.Letters = append(res.Letters, types.CoverLetter{Content: content, Version: next})
	}
	return res, nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newRenderApp(cmd)
	if err != nil {
		return err
	}

	res, err := readEdited(renderCV, renderLetters)
	if err != nil {
		return err
	}
	if res.CV != nil && strings.TrimSpace(res.CV.Content) == "" {
		return errors.New("CV file is empty")
	}

	docs, renderErr := pipeline.RenderDocuments(ctx, a.renderer, res, a.logProgress)

	// the edited text is the input here; do not write it back
	exportCfg := *a.cfg
	exportCfg.SaveIntermediate = false
	exporter, err := export.FromConfig(ctx, &exportCfg, a.logger)
	if err != nil {
		return err
	}
	locations, exportErr := exporter.Export(ctx, runName(renderName, time.Now()), docs, res)
	observability.NewPrinter(cmd.OutOrStdout()).PrintExports(locations)

	return errors.Join(renderErr, exportErr)
}
