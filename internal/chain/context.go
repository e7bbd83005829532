package chain

import (
	"fmt"
	"time"

	docsmitherrors "github.com/alexisbeaulieu97/docsmith/pkg/errors"
)

// Context accumulates the state of one chain run: seed inputs, per-step
// results in completion order, and run-level metadata. It is created at
// the start of a run, shared by reference with every runner invocation,
// and returned to the caller when the run ends. It is not reused across
// runs and is not safe for concurrent use.
type Context struct {
	inputs    map[string]any
	results   map[string]*Result
	order     []string
	metadata  map[string]any
	startedAt time.Time
	ended     time.Time
	completed bool
}

// NewContext creates an empty execution context and records the run start
// time.
func NewContext() *Context {
	return &Context{
		inputs:    make(map[string]any),
		results:   make(map[string]*Result),
		metadata:  make(map[string]any),
		startedAt: time.Now(),
	}
}

// SetInput stores a seed value available to template rendering.
func (c *Context) SetInput(key string, value any) {
	c.inputs[key] = value
}

// Input returns the input stored under key.
func (c *Context) Input(key string) (any, bool) {
	value, ok := c.inputs[key]
	return value, ok
}

// InputOr returns the input stored under key, or fallback when absent.
func (c *Context) InputOr(key string, fallback any) any {
	if value, ok := c.inputs[key]; ok {
		return value
	}
	return fallback
}

// RecordResult stores a step result. A result can only be written once
// per step name; a second write is rejected.
func (c *Context) RecordResult(res *Result) error {
	if res == nil {
		return docsmitherrors.NewExecutionError("", fmt.Errorf("result cannot be nil"))
	}
	if _, exists := c.results[res.StepName]; exists {
		return docsmitherrors.NewExecutionError(res.StepName, fmt.Errorf("result already recorded"))
	}
	c.results[res.StepName] = res
	c.order = append(c.order, res.StepName)
	return nil
}

// Result returns the recorded result for the named step.
func (c *Context) Result(name string) (*Result, bool) {
	res, ok := c.results[name]
	return res, ok
}

// HasResult reports whether a result exists for the named step.
func (c *Context) HasResult(name string) bool {
	_, ok := c.results[name]
	return ok
}

// Output returns the output of the named step when it succeeded.
func (c *Context) Output(name string) (string, bool) {
	res, ok := c.results[name]
	if !ok || !res.Succeeded() {
		return "", false
	}
	return res.Output, true
}

// AllOutputs returns a name to output mapping for every successful step.
func (c *Context) AllOutputs() map[string]string {
	outputs := make(map[string]string, len(c.order))
	for _, name := range c.order {
		if res := c.results[name]; res.Succeeded() {
			outputs[name] = res.Output
		}
	}
	return outputs
}

// FailedSteps lists the names of failed steps in completion order.
func (c *Context) FailedSteps() []string {
	var failed []string
	for _, name := range c.order {
		if c.results[name].Failed() {
			failed = append(failed, name)
		}
	}
	return failed
}

// ResultNames lists recorded step names in completion order.
func (c *Context) ResultNames() []string {
	return append([]string(nil), c.order...)
}

// SetMetadata stores a run-level annotation.
func (c *Context) SetMetadata(key string, value any) {
	c.metadata[key] = value
}

// Metadata returns the run-level annotation stored under key.
func (c *Context) Metadata(key string) (any, bool) {
	value, ok := c.metadata[key]
	return value, ok
}

// MarkComplete ends the run. The first call records the end time;
// subsequent calls have no effect.
func (c *Context) MarkComplete() {
	if c.completed {
		return
	}
	c.completed = true
	c.ended = time.Now()
}

// Completed reports whether the run has ended.
func (c *Context) Completed() bool {
	return c.completed
}

// StartedAt returns the run start time.
func (c *Context) StartedAt() time.Time {
	return c.startedAt
}

// Elapsed returns the run duration once complete, or the time elapsed so
// far for a run still in progress.
func (c *Context) Elapsed() time.Duration {
	if c.completed {
		return c.ended.Sub(c.startedAt)
	}
	return time.Since(c.startedAt)
}

// Record is the serialized form of a context, suitable for persistence
// or display.
type Record struct {
	Inputs         map[string]any `json:"inputs"`
	Results        []ResultRecord `json:"results"`
	Metadata       map[string]any `json:"metadata"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	Completed      bool           `json:"completed"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
}

// ResultRecord is the serialized form of a single step result.
type ResultRecord struct {
	StepName        string         `json:"step_name"`
	Status          string         `json:"status"`
	Output          string         `json:"output,omitempty"`
	Error           string         `json:"error,omitempty"`
	DurationSeconds float64        `json:"duration_seconds"`
	CompletedAt     time.Time      `json:"completed_at"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ToRecord serializes the full context to a plain structured record.
func (c *Context) ToRecord() Record {
	record := Record{
		Inputs:         make(map[string]any, len(c.inputs)),
		Results:        make([]ResultRecord, 0, len(c.order)),
		Metadata:       make(map[string]any, len(c.metadata)),
		StartedAt:      c.startedAt,
		Completed:      c.completed,
		ElapsedSeconds: c.Elapsed().Seconds(),
	}

	for key, value := range c.inputs {
		record.Inputs[key] = value
	}
	for key, value := range c.metadata {
		record.Metadata[key] = value
	}
	if c.completed {
		ended := c.ended
		record.CompletedAt = &ended
	}

	for _, name := range c.order {
		res := c.results[name]
		rr := ResultRecord{
			StepName:        res.StepName,
			Status:          res.Status,
			Output:          res.Output,
			DurationSeconds: res.Duration.Seconds(),
			CompletedAt:     res.CompletedAt,
			Metadata:        res.Metadata,
		}
		if res.Err != nil {
			rr.Error = res.Err.Error()
		}
		record.Results = append(record.Results, rr)
	}

	return record
}
