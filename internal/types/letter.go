package types

import "fmt"

// CoverLetter is one generated letter variant. Version is 1-based and dense
// within a run.
type CoverLetter struct {
	Content string `json:"content"`
	Version int    `json:"version"`
}

// Name is the document name used for downloads and exports.
func (l CoverLetter) Name() string {
	return fmt.Sprintf("letter-%d", l.Version)
}
