package pipeline

import (
	"fmt"
	"time"

	"github.com/elodex/catalog/internal/catalog"
)

// Result tracks counts and failures from one stage.
type Result struct {
	Kind       string
	RunID      string
	Candidates int
	Written    int
	Skipped    int
	Failures   []catalog.Failure
	Artifacts  []string
	Duration   time.Duration

	// ListingFailed marks a stage whose candidate listing could not be
	// fetched; its artifact is empty and must not replace stored documents.
	ListingFailed bool
}

// AddFailure records a failed entity or a stage-level listing failure.
func (r *Result) AddFailure(f catalog.Failure) {
	r.Failures = append(r.Failures, f)
}

// FailureReasons returns the reason of every failure, one entry per failure.
func (r *Result) FailureReasons() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Reason)
	}
	return out
}

// Summary returns a human-readable summary of the stage.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"kind=%s candidates=%d written=%d skipped=%d failed=%d dur=%s",
		r.Kind, r.Candidates, r.Written, r.Skipped, len(r.Failures),
		r.Duration.Round(time.Millisecond),
	)
}
