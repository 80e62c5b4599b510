// Package types provides type definitions for the data passed between the
// generation, rendering and session layers.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"strings"
)

// JobAd is the raw text of a job advertisement. It is not modified once a
// generation run starts.
type JobAd struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url,omitempty"`
}

// Empty reports whether the advertisement carries no usable text.
func (j JobAd) Empty() bool {
	return strings.TrimSpace(j.Text) == ""
}

// SkillSet is an ordered list of trimmed, non-empty skills in the order the
// backend produced them.
type SkillSet []string

// ErrEmptyJobAd is returned when a run is started without job text.
var ErrEmptyJobAd = errors.New("job advertisement is empty")
