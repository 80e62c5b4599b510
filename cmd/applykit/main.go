// Package main provides the applykit command line: tailored CV and cover
// letter generation, document re-rendering and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "applykit",
	Short: "Tailor a CV and write cover letters for a job advertisement",
	Long: `applykit reads a job advertisement, extracts the skills it asks for, tailors the
user's CV to it and writes several cover letter variants. Every artifact is
rendered as an editable Word document and a print-ready PDF.

Settings come from the environment (and .env), optionally overlaid by a JSON
file given with --config; command-line flags override both.`,
	SilenceUsage: true,
}

var (
	configPath  string
	debugFlag   bool
	verboseFlag bool
	providerArg string
	modelArg    string
	engineArg   string
	outputArg   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	pf.BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Print generated artifacts to stdout")
	pf.StringVar(&providerArg, "provider", "", "LLM provider: openai, gemini or anthropic")
	pf.StringVar(&modelArg, "model", "", "Model identifier")
	pf.StringVar(&engineArg, "print-engine", "", "PDF engine: fpdf or latex")
	pf.StringVarP(&outputArg, "output-dir", "o", "", "Directory for exported documents")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
