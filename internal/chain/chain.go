package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

// Settings holds chain-level execution options.
type Settings struct {
	// FailFast stops scheduling further steps when a required step fails.
	FailFast bool
	// MaxParallel is reserved for a future concurrent scheduler. It has
	// no effect on ordering or timing: steps always execute one at a
	// time.
	MaxParallel int
}

// Chain owns an ordered collection of step definitions, validates the
// dependency graph, computes execution order, and drives the runner over
// that order. Step-level failures are captured in the returned context;
// only configuration errors detected before execution are returned as
// errors.
type Chain struct {
	name     string
	settings Settings
	steps    []*Step
	runner   *Runner
	log      *logger.Logger
}

// New creates an empty chain.
func New(name string, settings Settings, log *logger.Logger) *Chain {
	return &Chain{
		name:     name,
		settings: settings,
		runner:   NewRunner(log),
		log:      log,
	}
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// AddStep appends a step declaration. The graph is not re-validated
// until the next Execute call.
func (c *Chain) AddStep(step *Step) {
	c.steps = append(c.steps, step)
}

// RemoveStep deletes the named step declaration and reports whether it
// existed.
func (c *Chain) RemoveStep(name string) bool {
	for i, step := range c.steps {
		if step.Name == name {
			c.steps = append(c.steps[:i], c.steps[i+1:]...)
			return true
		}
	}
	return false
}

// Step returns the named step declaration.
func (c *Chain) Step(name string) (*Step, bool) {
	for _, step := range c.steps {
		if step.Name == name {
			return step, true
		}
	}
	return nil, false
}

// StepNames lists step names in declaration order.
func (c *Chain) StepNames() []string {
	names := make([]string, 0, len(c.steps))
	for _, step := range c.steps {
		names = append(names, step.Name)
	}
	return names
}

// Execute validates the chain, computes the execution order, and runs
// every step once against a fresh execution context. The context is
// returned in all cases except configuration errors, which are raised
// before any step runs.
func (c *Chain) Execute(ctx context.Context, invoker Invoker, inputs map[string]any) (*Context, error) {
	g, err := buildGraph(c.steps)
	if err != nil {
		return nil, err
	}

	execCtx := NewContext()
	for key, value := range inputs {
		execCtx.SetInput(key, value)
	}
	execCtx.SetMetadata("chain", c.name)
	execCtx.SetMetadata("started_at", execCtx.StartedAt())

	c.log.WithFields(map[string]any{"chain": c.name, "steps": len(g.order)}).Info("chain execution started")

	aborted := false
	for _, name := range g.order {
		step := g.nodes[name].step

		if unsatisfied := c.runner.UnsatisfiedDeps(step, execCtx); len(unsatisfied) > 0 {
			c.recordResult(execCtx, skippedResult(step, unsatisfied))
			continue
		}

		res := c.runner.Run(ctx, step, execCtx, invoker)
		c.recordResult(execCtx, res)

		if res.Failed() && step.Policy.Required && c.settings.FailFast {
			c.log.WithStep(step.Name).Error(res.Err, "required step failed, aborting chain")
			aborted = true
			break
		}
	}

	execCtx.MarkComplete()
	execCtx.SetMetadata("aborted", aborted)
	execCtx.SetMetadata("completed_at", time.Now())

	c.log.WithFields(map[string]any{
		"chain":    c.name,
		"failed":   len(execCtx.FailedSteps()),
		"duration": execCtx.Elapsed().String(),
	}).Info("chain execution finished")

	return execCtx, nil
}

func (c *Chain) recordResult(execCtx *Context, res *Result) {
	if err := execCtx.RecordResult(res); err != nil {
		// Unreachable after validation: step names are unique and each
		// step runs once.
		c.log.Error(err, "failed to record step result")
	}
}

// skippedResult synthesizes the result for a step whose dependencies were
// not satisfied. No invocation is attempted.
func skippedResult(step *Step, unsatisfied []string) *Result {
	metadata := make(map[string]any, len(step.Metadata)+2)
	for key, value := range step.Metadata {
		metadata[key] = value
	}
	metadata["attempts"] = 0
	metadata["skip_reason"] = fmt.Sprintf("unsatisfied dependencies: %s", strings.Join(unsatisfied, ", "))

	return &Result{
		StepName:    step.Name,
		Status:      StatusSkipped,
		CompletedAt: time.Now(),
		Metadata:    metadata,
	}
}
