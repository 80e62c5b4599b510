package types

// TailoredCV is the generated CV. Content is replaced wholesale on edit;
// Template is the base CV text it was generated from and never changes.
type TailoredCV struct {
	Content  string      `json:"content"`
	Template string      `json:"template"`
	Analysis *CVAnalysis `json:"analysis,omitempty"`
}

// CVAnalysis is the structured review that accompanies a tailored CV.
type CVAnalysis struct {
	Keywords      []string       `json:"keywords"`
	Gaps          []string       `json:"gaps"`
	Suggestions   []string       `json:"suggestions"`
	QualityChecks []QualityCheck `json:"quality_checks"`
}

// QualityCheck is one pass/fail review item.
type QualityCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// Empty reports whether the analysis has nothing to show.
func (a *CVAnalysis) Empty() bool {
	return a == nil || (len(a.Keywords) == 0 && len(a.Gaps) == 0 &&
		len(a.Suggestions) == 0 && len(a.QualityChecks) == 0)
}

// PassedChecks counts quality checks that passed.
func (a *CVAnalysis) PassedChecks() int {
	if a == nil {
		return 0
	}
	n := 0
	for _, c := range a.QualityChecks {
		if c.Passed {
			n++
		}
	}
	return n
}
