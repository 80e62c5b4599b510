package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/applykit/internal/server"
	"github.com/jonathan/applykit/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that runs generation sessions: POST /sessions starts a run,
the session's CV and letters can then be edited and downloaded as DOCX or PDF.`,
	RunE: runServe,
}

var (
	serveAddr         string
	serveUseBrowser   bool
	serveAllowPrivate bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (defaults to SERVER_ADDR)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use headless browser for SPA job boards (requires Chrome)")
	serveCmd.Flags().BoolVar(&serveAllowPrivate, "allow-private-fetch", false, "Allow job_url to reach loopback and private network addresses")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := session.Open(ctx, a.cfg.SessionStore, a.cfg.RedisURL, a.cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() { _ = store.Close() }()

	addr := a.cfg.ServerAddr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}

	srv := server.New(server.Config{
		Addr:              addr,
		RateLimit:         a.cfg.ServerRateLimit,
		LetterCount:       a.cfg.LetterCount,
		UseBrowser:        serveUseBrowser,
		AllowPrivateFetch: serveAllowPrivate,
		Logger:            a.logger,
	}, a.pipeline, a.renderer, store)

	return srv.ListenAndServe(ctx)
}
