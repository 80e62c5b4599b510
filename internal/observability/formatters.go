// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/applykit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList appends up to limit items as bullets, with an overflow line.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintJobAd outputs the source and the first lines of the job advertisement.
func (p *Printer) PrintJobAd(ad types.JobAd) {
	if ad.Empty() {
		return
	}

	var sb strings.Builder
	if ad.SourceURL != "" {
		sb.WriteString(fmt.Sprintf("Source:   %s\n", ad.SourceURL))
	}
	sb.WriteString(fmt.Sprintf("Length:   %d characters\n\n", len(ad.Text)))

	lines := strings.Split(strings.TrimSpace(ad.Text), "\n")
	count := min(len(lines), maxItemsToShow)
	sb.WriteString(strings.Join(lines[:count], "\n"))
	if len(lines) > count {
		sb.WriteString(fmt.Sprintf("\n... and %d more lines", len(lines)-count))
	}

	p.printBox("JOB ADVERTISEMENT", sb.String())
}

// PrintSkills outputs the extracted skills, several per line.
func (p *Printer) PrintSkills(skills types.SkillSet) {
	if len(skills) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Extracted %d skills:\n\n", len(skills)))

	var line string
	for _, skill := range skills {
		next := skill
		if line != "" {
			next = line + ", " + skill
		}
		if len(next) > boxWidth-6 && line != "" {
			sb.WriteString(line + ",\n")
			line = skill
			continue
		}
		line = next
	}
	sb.WriteString(line)

	p.printBox("SKILLS", sb.String())
}

// PrintTailoredCV outputs the analysis that came with the tailored CV.
func (p *Printer) PrintTailoredCV(cv *types.TailoredCV) {
	if cv == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Content:  %d characters\n", len(cv.Content)))

	a := cv.Analysis
	if a == nil || a.Empty() {
		sb.WriteString("\nNo structured analysis (raw reply kept)")
		p.printBox("TAILORED CV", sb.String())
		return
	}

	if len(a.Keywords) > 0 {
		sb.WriteString("\nKeywords:\n")
		writeList(&sb, a.Keywords, maxItemsToShow)
	}
	if len(a.Gaps) > 0 {
		sb.WriteString("\nGaps:\n")
		writeList(&sb, a.Gaps, 3)
	}
	if len(a.QualityChecks) > 0 {
		sb.WriteString(fmt.Sprintf("\nQuality checks: %d/%d passed\n", a.PassedChecks(), len(a.QualityChecks)))
		checks := []string{}
		for _, c := range a.QualityChecks {
			mark := "✓"
			if !c.Passed {
				mark = "✗"
			}
			checks = append(checks, mark+c.Name)
		}
		sb.WriteString(fmt.Sprintf("  [%s]\n", strings.Join(checks, " ")))
	}

	p.printBox("TAILORED CV", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLetters outputs one preview line per cover letter variant.
func (p *Printer) PrintLetters(letters []types.CoverLetter) {
	if len(letters) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d cover letters:\n\n", len(letters)))
	for i, l := range letters {
		preview := strings.Join(strings.Fields(l.Content), " ")
		sb.WriteString(fmt.Sprintf("#%d  %s", l.Version, truncate(preview, 45)))
		if i < len(letters)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("COVER LETTERS", sb.String())
}

// PrintErrors outputs the per-artifact failures of a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintErrors(errs map[string]error) {
	if len(errs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL ARTIFACTS GENERATED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d artifact(s) failed:\n\n", len(errs)))
	first := true
	for _, name := range []string{"skills", "cv", "letters"} {
		err, ok := errs[name]
		if !ok {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(fmt.Sprintf("⚠ %s\n", name))
		sb.WriteString(fmt.Sprintf("  %s\n", err.Error()))
	}

	p.printBox("FAILED ARTIFACTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExports lists the written documents.
func (p *Printer) PrintExports(locations []string) {
	if len(locations) == 0 {
		return
	}
	p.printBox(fmt.Sprintf("EXPORTED %d FILES", len(locations)), strings.Join(locations, "\n"))
}
