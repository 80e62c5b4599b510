package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Extract the skills a job ad asks for",
	RunE:  runSkills,
}

var (
	skillsJob        string
	skillsJobURL     string
	skillsUseBrowser bool
	skillsJSON       bool
)

func init() {
	addJobFlags(skillsCmd, &skillsJob, &skillsJobURL, &skillsUseBrowser)
	skillsCmd.Flags().BoolVar(&skillsJSON, "json", false, "Print the skills as a JSON array")
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ad, err := readJobAd(ctx, a, skillsJob, skillsJobURL, skillsUseBrowser)
	if err != nil {
		return err
	}

	set, err := a.skills.Extract(ctx, ad.Text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if skillsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}
	for _, s := range set {
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	return nil
}
