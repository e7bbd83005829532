package chain

import (
	"time"
)

const (
	// StatusSuccess marks a successful step execution.
	StatusSuccess = "success"
	// StatusFailed marks a failure during step execution.
	StatusFailed = "failed"
	// StatusSkipped indicates the step was not attempted, or failed with
	// skip_on_failure set.
	StatusSkipped = "skipped"
)

// Result captures the outcome of executing a single step. A result is
// created exactly once by the runner (or synthesized by the orchestrator
// for skipped steps), is immutable after creation, and is owned by the
// execution context once recorded.
type Result struct {
	StepName    string
	Status      string
	Output      string
	Err         error
	Duration    time.Duration
	CompletedAt time.Time
	Metadata    map[string]any
}

// Succeeded reports whether the step produced an output without error.
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Failed reports whether the step ended with an error.
func (r *Result) Failed() bool {
	return r != nil && r.Status == StatusFailed
}

// Skipped reports whether the step was never attempted or was demoted to
// skipped by its policy.
func (r *Result) Skipped() bool {
	return r != nil && r.Status == StatusSkipped
}
