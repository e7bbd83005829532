package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures chain configuration issues: duplicate step
// names, dangling dependency references, dependency cycles. These are
// raised before any step executes.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a runtime failure while executing a step:
// exhausted retries, a failed transform, or an invocation timeout.
type ExecutionError struct {
	StepName string
	Err      error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(stepName string, err error) error {
	return &ExecutionError{StepName: stepName, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.StepName != "" {
		return fmt.Sprintf("execution error on step %s: %v", e.StepName, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RenderError indicates a prompt template could not be rendered, usually
// because a placeholder resolved to neither a dependency output nor an
// input value.
type RenderError struct {
	StepName    string
	Placeholder string
	Err         error
}

// NewRenderError constructs a RenderError for the given step.
func NewRenderError(stepName, placeholder string, err error) error {
	return &RenderError{StepName: stepName, Placeholder: placeholder, Err: err}
}

func (e *RenderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Placeholder != "" {
		return fmt.Sprintf("render error on step %s: unresolved placeholder %q", e.StepName, e.Placeholder)
	}
	return fmt.Sprintf("render error on step %s: %v", e.StepName, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RenderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
