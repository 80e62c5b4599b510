package tailoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/applykit/internal/types"
)

const (
	// minKeywordCoverage is the share of reported keywords that must appear in the content.
	minKeywordCoverage = 0.6
	// lengthTolerance bounds the tailored length relative to the base CV.
	lengthTolerance = 0.5
)

// Names of the checks Review produces.
const (
	CheckQuantified      = "quantified impact"
	CheckPlaceholders    = "no placeholder text"
	CheckLength          = "length close to base CV"
	CheckKeywordCoverage = "keyword coverage"
)

var (
	digitRe       = regexp.MustCompile(`\d`)
	placeholderRe = regexp.MustCompile(`(?i)\[(your|company|insert|name|position)[^\]]*\]|lorem ipsum|\bTBD\b|\bXXX\b`)
)

// Review runs local checks on a tailored CV. They complement the checks
// reported by the model and never call the backend.
func Review(content, template string, keywords []string) []types.QualityCheck {
	checks := []types.QualityCheck{
		checkQuantified(content),
		checkPlaceholders(content),
		checkLength(len(content), len(template)),
	}
	if len(keywords) > 0 {
		checks = append(checks, checkKeywordCoverage(content, keywords))
	}
	return checks
}

// Recheck replaces the local checks in a with a fresh Review of content,
// keeping the checks the model reported. Used after the CV is edited.
func Recheck(a *types.CVAnalysis, content, template string) {
	if a == nil {
		return
	}
	kept := a.QualityChecks[:0:0]
	for _, c := range a.QualityChecks {
		switch c.Name {
		case CheckQuantified, CheckPlaceholders, CheckLength, CheckKeywordCoverage:
		default:
			kept = append(kept, c)
		}
	}
	a.QualityChecks = append(kept, Review(content, template, a.Keywords)...)
}

func checkQuantified(content string) types.QualityCheck {
	ok := digitRe.MatchString(content) || strings.Contains(content, "%")
	c := types.QualityCheck{Name: CheckQuantified, Passed: ok}
	if !ok {
		c.Note = "no numbers or metrics found"
	}
	return c
}

func checkPlaceholders(content string) types.QualityCheck {
	found := placeholderRe.FindString(content)
	c := types.QualityCheck{Name: CheckPlaceholders, Passed: found == ""}
	if found != "" {
		c.Note = fmt.Sprintf("found %q", found)
	}
	return c
}

func checkLength(tailored, base int) types.QualityCheck {
	c := types.QualityCheck{Name: CheckLength}
	if base == 0 {
		c.Passed = tailored > 0
		return c
	}
	lo := float64(base) * (1 - lengthTolerance)
	hi := float64(base) * (1 + lengthTolerance)
	c.Passed = float64(tailored) >= lo && float64(tailored) <= hi
	if !c.Passed {
		c.Note = fmt.Sprintf("%d characters vs %d in base CV", tailored, base)
	}
	return c
}

func checkKeywordCoverage(content string, keywords []string) types.QualityCheck {
	lower := strings.ToLower(content)
	present := 0
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(lower, kw) {
			present++
		}
	}
	ratio := float64(present) / float64(len(keywords))
	return types.QualityCheck{
		Name:   CheckKeywordCoverage,
		Passed: ratio >= minKeywordCoverage,
		Note:   fmt.Sprintf("%d/%d keywords present", present, len(keywords)),
	}
}
