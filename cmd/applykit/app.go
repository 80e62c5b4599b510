package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/applykit/internal/config"
	"github.com/jonathan/applykit/internal/letters"
	"github.com/jonathan/applykit/internal/llm"
	"github.com/jonathan/applykit/internal/logging"
	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/rendering"
	"github.com/jonathan/applykit/internal/skills"
	"github.com/jonathan/applykit/internal/tailoring"
)

// loadConfig layers the settings: environment, then the --config file, then
// flags that were explicitly set. The API key and default model are derived
// from the provider that wins.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = debugFlag
	}
	if flags.Changed("provider") {
		cfg.Provider = providerArg
	}
	if flags.Changed("model") {
		cfg.Model = modelArg
	}
	if flags.Changed("print-engine") {
		cfg.PrintEngine = engineArg
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputArg
	}
	cfg.ResolveProvider()
	return &cfg, nil
}

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	assets   *config.Assets
	logger   *slog.Logger
	client   *llm.Client
	pipeline *pipeline.Pipeline
	skills   *skills.Extractor
	renderer *rendering.Renderer
}

// newRenderApp loads assets and builds the renderer only; it never needs a
// backend key.
func newRenderApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Debug)
	if err := cfg.ValidateSettings(); err != nil {
		return nil, err
	}
	return buildRenderer(cfg, logger)
}

func buildRenderer(cfg *config.Config, logger *slog.Logger) (*app, error) {
	assets, err := config.LoadAssets(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := rendering.EngineByName(cfg.PrintEngine)
	if err != nil {
		return nil, err
	}
	renderer := rendering.NewRenderer(assets.Style,
		rendering.WithDocxTemplate(assets.DocxTemplate),
		rendering.WithPrintEngine(engine),
		rendering.WithLogger(logger),
	)
	return &app{cfg: cfg, assets: assets, logger: logger, renderer: renderer}, nil
}

// newApp builds every component, including the completion client.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := buildRenderer(cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(ctx, cfg.LLM(), llm.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.client = client

	a.skills = skills.NewExtractor(client, skills.Options{Dedupe: cfg.DedupeSkills, Logger: logger})
	tailor := tailoring.NewEngine(client, a.assets.CVTemplate, a.assets.Guide, logger)
	generator := letters.NewGenerator(client, letters.Options{
		Examples:     a.assets.Examples,
		Tone:         cfg.Tone,
		AllowPartial: cfg.AllowPartialLetters,
		Logger:       logger,
	})
	a.pipeline = pipeline.New(a.skills, tailor, generator, logger)

	logger.Debug("application ready", "provider", cfg.Provider, "model", cfg.Model, "print_engine", cfg.PrintEngine)
	return a, nil
}

func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("failed to close LLM client", "error", err)
		}
	}
}

// logProgress reports pipeline progress through the logger.
func (a *app) logProgress(event pipeline.ProgressEvent) {
	if event.Failed {
		a.logger.Warn(event.Message, "step", event.Step)
		return
	}
	a.logger.Info(event.Message, "step", event.Step)
}

// runName names an export folder, e.g. "acme-20250101-120000".
func runName(prefix string, now time.Time) string {
	stamp := now.Format("20060102-150405")
	if prefix == "" {
		return stamp
	}
	return prefix + "-" + stamp
}
