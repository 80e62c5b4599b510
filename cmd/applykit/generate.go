package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/applykit/internal/export"
	"github.com/jonathan/applykit/internal/ingestion"
	"github.com/jonathan/applykit/internal/observability"
	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate skills, a tailored CV and cover letters for a job ad",
	Long: `Runs skill extraction, CV tailoring and cover letter generation concurrently,
renders every artifact as DOCX and PDF and exports them to the output directory
(or S3 bucket). A failed artifact does not discard the others; the command
exits non-zero after exporting what succeeded.`,
	RunE: runGenerate,
}

var (
	genJob        string
	genJobURL     string
	genUseBrowser bool
	genLetters    int
	genName       string
)

func init() {
	addJobFlags(generateCmd, &genJob, &genJobURL, &genUseBrowser)
	generateCmd.Flags().IntVarP(&genLetters, "letters", "n", 0, "Number of cover letters (defaults to MAX_COVER_LETTERS)")
	generateCmd.Flags().StringVar(&genName, "name", "", "Prefix of the export folder (e.g. the company name)")
	rootCmd.AddCommand(generateCmd)
}

// addJobFlags registers the job ad source flags shared by generate and skills.
func addJobFlags(cmd *cobra.Command, job, jobURL *string, useBrowser *bool) {
	cmd.Flags().StringVarP(job, "job", "j", "", "Path to job posting text file (\"-\" reads stdin)")
	cmd.Flags().StringVar(jobURL, "job-url", "", "URL to fetch job posting from")
	cmd.Flags().BoolVar(useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	cmd.MarkFlagsOneRequired("job", "job-url")
}

// readJobAd loads the job ad from a file, stdin or URL.
func readJobAd(ctx context.Context, a *app, job, jobURL string, useBrowser bool) (types.JobAd, error) {
	switch {
	case jobURL != "":
		ad, src, err := ingestion.FromURL(ctx, jobURL, ingestion.Options{UseBrowser: useBrowser, Logger: a.logger})
		if err != nil {
			return types.JobAd{}, err
		}
		a.logger.Debug("ingested job posting", "source", src)
		return ad, nil
	case job == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return types.JobAd{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		ad, _, err := ingestion.FromText(string(data))
		return ad, err
	default:
		ad, _, err := ingestion.FromFile(job)
		return ad, err
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ad, err := readJobAd(ctx, a, genJob, genJobURL, genUseBrowser)
	if err != nil {
		return err
	}

	count := a.cfg.LetterCount
	if cmd.Flags().Changed("letters") {
		count = genLetters
	}

	printer := observability.NewPrinter(os.Stdout)
	if verboseFlag {
		printer.PrintJobAd(ad)
	}

	start := time.Now()
	res, err := a.pipeline.Run(ctx, ad, pipeline.RunOptions{LetterCount: count, OnProgress: a.logProgress})
	if err != nil {
		return err
	}
	a.logger.Info("generation finished", "duration", time.Since(start).Round(time.Millisecond))

	if verboseFlag {
		printer.PrintSkills(res.Skills)
		printer.PrintTailoredCV(res.CV)
		printer.PrintLetters(res.Letters)
	}
	printer.PrintErrors(res.Errors)

	docs, renderErr := pipeline.RenderDocuments(ctx, a.renderer, res, a.logProgress)

	exporter, err := export.FromConfig(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	locations, exportErr := exporter.Export(ctx, runName(genName, start), docs, res)
	printer.PrintExports(locations)

	if err := errors.Join(res.Err(), renderErr, exportErr); err != nil {
		return fmt.Errorf("run finished with errors: %w", err)
	}
	return nil
}
