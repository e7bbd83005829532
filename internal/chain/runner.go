package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
	docsmitherrors "github.com/alexisbeaulieu97/docsmith/pkg/errors"
)

// Invoker is the model invocation boundary: a rendered prompt in, a
// response out. The engine is decoupled from any specific backend,
// caching layer or transport through this interface.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, prompt string) (string, error)

// Invoke calls the wrapped function.
func (f InvokerFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Runner executes a single step against the current execution context:
// prompt rendering, model invocation with retry, and output transform.
// It builds the step result but never writes it into the context itself;
// the orchestrator is the single writer.
type Runner struct {
	log *logger.Logger
}

// NewRunner creates a runner that logs through the supplied logger.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{log: log}
}

// UnsatisfiedDeps returns the dependency names without a successful
// result, for diagnostics. An empty slice means the step is eligible.
func (r *Runner) UnsatisfiedDeps(step *Step, execCtx *Context) []string {
	var unsatisfied []string
	for _, dep := range step.DependsOn {
		res, ok := execCtx.Result(dep)
		if !ok || !res.Succeeded() {
			unsatisfied = append(unsatisfied, dep)
		}
	}
	return unsatisfied
}

// Run renders the step prompt, invokes the model with the step's retry
// policy, and applies the transform. All failures are captured in the
// returned result; Run never panics or returns an error out of band.
func (r *Runner) Run(ctx context.Context, step *Step, execCtx *Context, invoker Invoker) *Result {
	log := r.log.WithStep(step.Name)
	start := time.Now()

	prompt, err := renderPrompt(step, execCtx)
	if err != nil {
		log.Error(err, "prompt rendering failed")
		return r.buildResult(step, start, 0, "", err)
	}

	attempts := 0
	maxAttempts := step.Policy.RetryCount + 1
	var output string
	var invokeErr error

	for attempts < maxAttempts {
		if attempts > 0 {
			if err := sleepContext(ctx, step.Policy.RetryDelay); err != nil {
				invokeErr = err
				break
			}
			log.WithFields(map[string]any{"attempt": attempts + 1}).Debug("retrying invocation")
		}
		attempts++

		output, invokeErr = r.invokeOnce(ctx, step, prompt, invoker)
		if invokeErr == nil {
			break
		}
		log.WithFields(map[string]any{"attempt": attempts}).Error(invokeErr, "invocation attempt failed")
	}

	if invokeErr != nil {
		return r.buildResult(step, start, attempts, "", docsmitherrors.NewExecutionError(step.Name, invokeErr))
	}

	if step.Transform != nil {
		transformed, err := step.Transform(output, execCtx)
		if err != nil {
			log.Error(err, "transform failed")
			return r.buildResult(step, start, attempts, "", docsmitherrors.NewExecutionError(step.Name, fmt.Errorf("transform failed: %w", err)))
		}
		output = transformed
	}

	return r.buildResult(step, start, attempts, output, nil)
}

// invokeOnce runs a single invocation attempt under the step's advisory
// timeout.
func (r *Runner) invokeOnce(ctx context.Context, step *Step, prompt string, invoker Invoker) (string, error) {
	attemptCtx := ctx
	if step.Policy.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, step.Policy.Timeout)
		defer cancel()
	}

	output, err := invoker.Invoke(attemptCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("timeout exceeded after %s: %w", step.Policy.Timeout, err)
		}
		return "", err
	}
	return output, nil
}

func (r *Runner) buildResult(step *Step, start time.Time, attempts int, output string, err error) *Result {
	metadata := make(map[string]any, len(step.Metadata)+2)
	for key, value := range step.Metadata {
		metadata[key] = value
	}
	metadata["attempts"] = attempts
	metadata["started_at"] = start

	res := &Result{
		StepName:    step.Name,
		Output:      output,
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
		Metadata:    metadata,
	}

	switch {
	case err == nil:
		res.Status = StatusSuccess
	case !step.Policy.Required && step.Policy.SkipOnFailure:
		// Optional steps with skip_on_failure are recorded as skipped
		// rather than failed.
		res.Status = StatusSkipped
		res.Metadata["skip_reason"] = err.Error()
	default:
		res.Status = StatusFailed
		res.Err = err
	}

	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
