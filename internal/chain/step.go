package chain

import "time"

// DefaultTimeout bounds a single model invocation attempt.
const DefaultTimeout = 300 * time.Second

// DefaultRetryDelay is the pause between invocation attempts.
const DefaultRetryDelay = time.Second

// Transform maps raw model output to a step's final output. A transform
// error is treated as a step failure, not a fatal error.
type Transform func(raw string, execCtx *Context) (string, error)

// Policy holds per-step execution options.
type Policy struct {
	// Timeout is an advisory upper bound per invocation attempt.
	Timeout time.Duration
	// RetryCount is the number of retries after the first attempt.
	RetryCount int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
	// Required marks the step as mandatory: when it fails and the chain
	// runs fail-fast, no further steps are scheduled.
	Required bool
	// SkipOnFailure records a failed optional step as skipped instead of
	// failed.
	SkipOnFailure bool
}

// DefaultPolicy returns the policy applied to steps that do not override
// any options.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:       DefaultTimeout,
		RetryCount:    0,
		RetryDelay:    DefaultRetryDelay,
		Required:      true,
		SkipOnFailure: false,
	}
}

// Step is an immutable declaration of one unit of work: a named prompt
// template, its dependencies, its execution policy and an optional output
// transform. Steps are equal when their names are equal.
type Step struct {
	Name      string
	Template  string
	DependsOn []string
	Transform Transform
	Policy    Policy
	Metadata  map[string]string
}

// NewStep constructs a step with the default policy.
func NewStep(name, template string, dependsOn ...string) *Step {
	return &Step{
		Name:      name,
		Template:  template,
		DependsOn: append([]string(nil), dependsOn...),
		Policy:    DefaultPolicy(),
	}
}
