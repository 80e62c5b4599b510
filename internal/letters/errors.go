package letters

import (
	"fmt"
	"sort"
	"strings"
)

// PartialError is returned with the letters that did succeed when partial
// results are allowed. Failed maps a 1-based version to its error.
type PartialError struct {
	Requested int
	Failed    map[int]error
}

func (e *PartialError) Error() string {
	versions := e.FailedVersions()
	parts := make([]string, 0, len(versions))
	for _, v := range versions {
		parts = append(parts, fmt.Sprintf("version %d: %v", v, e.Failed[v]))
	}
	return fmt.Sprintf("%d of %d cover letters failed (%s)", len(versions), e.Requested, strings.Join(parts, "; "))
}

// FailedVersions lists failed versions in ascending order.
func (e *PartialError) FailedVersions() []int {
	versions := make([]int, 0, len(e.Failed))
	for v := range e.Failed {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, v := range e.FailedVersions() {
		errs = append(errs, e.Failed[v])
	}
	return errs
}
