package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	docsmitherrors "github.com/alexisbeaulieu97/docsmith/pkg/errors"
)

// stepNameInvoker answers "<step>-out" based on a marker the template
// embeds in the prompt.
func stepNameInvoker() Invoker {
	return InvokerFunc(func(_ context.Context, prompt string) (string, error) {
		name, _, _ := strings.Cut(prompt, ":")
		return name + "-out", nil
	})
}

func threeStepChain(t *testing.T, settings Settings) *Chain {
	t.Helper()

	c := New("docs", settings, newTestLogger(t))
	c.AddStep(NewStep("A", "A: {{.seed}}"))
	c.AddStep(NewStep("B", "B: {{.A}}", "A"))
	c.AddStep(NewStep("C", "C: {{.A}} {{.B}}", "A", "B"))
	return c
}

func TestChainExecutesInDependencyOrder(t *testing.T) {
	t.Parallel()

	c := threeStepChain(t, Settings{})

	execCtx, err := c.Execute(context.Background(), stepNameInvoker(), map[string]any{"seed": "code"})
	require.NoError(t, err)

	require.True(t, execCtx.Completed())
	require.Equal(t, []string{"A", "B", "C"}, execCtx.ResultNames())
	require.Equal(t, map[string]string{
		"A": "A-out",
		"B": "B-out",
		"C": "C-out",
	}, execCtx.AllOutputs())

	out, ok := execCtx.Output("C")
	require.True(t, ok)
	require.Equal(t, "C-out", out)
}

func TestChainValidationFailsBeforeInvocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		steps []*Step
	}{
		{
			name:  "cycle",
			steps: []*Step{NewStep("a", "", "b"), NewStep("b", "", "a")},
		},
		{
			name:  "self dependency",
			steps: []*Step{NewStep("a", "", "a")},
		},
		{
			name:  "unknown dependency",
			steps: []*Step{NewStep("a", "", "ghost")},
		},
		{
			name:  "duplicate name",
			steps: []*Step{NewStep("a", ""), NewStep("a", "")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := New("broken", Settings{}, newTestLogger(t))
			for _, step := range tt.steps {
				c.AddStep(step)
			}

			invoked := false
			invoker := InvokerFunc(func(_ context.Context, _ string) (string, error) {
				invoked = true
				return "", nil
			})

			execCtx, err := c.Execute(context.Background(), invoker, nil)
			require.Error(t, err)
			require.Nil(t, execCtx)
			require.False(t, invoked, "no step may run on a configuration error")

			var validationErr *docsmitherrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestChainFailFastAbortsRemainingSteps(t *testing.T) {
	t.Parallel()

	c := New("docs", Settings{FailFast: true}, newTestLogger(t))
	c.AddStep(NewStep("A", "A:"))
	c.AddStep(NewStep("B", "B: {{.A}}", "A"))
	c.AddStep(NewStep("C", "C: {{.B}}", "B"))

	invoker := InvokerFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "B:") {
			return "", errors.New("backend rejected prompt")
		}
		name, _, _ := strings.Cut(prompt, ":")
		return name + "-out", nil
	})

	execCtx, err := c.Execute(context.Background(), invoker, nil)
	require.NoError(t, err)

	require.True(t, execCtx.Completed())
	require.Equal(t, []string{"B"}, execCtx.FailedSteps())

	// Nothing after the failure acquires an output.
	_, ok := execCtx.Output("C")
	require.False(t, ok)
	require.False(t, execCtx.HasResult("C"))

	aborted, ok := execCtx.Metadata("aborted")
	require.True(t, ok)
	require.Equal(t, true, aborted)
}

func TestChainWithoutFailFastRunsIndependentSteps(t *testing.T) {
	t.Parallel()

	c := New("docs", Settings{FailFast: false}, newTestLogger(t))
	c.AddStep(NewStep("A", "A:"))
	c.AddStep(NewStep("B", "B: {{.A}}", "A"))
	c.AddStep(NewStep("solo", "solo:"))

	invoker := InvokerFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "A:") {
			return "", errors.New("boom")
		}
		name, _, _ := strings.Cut(prompt, ":")
		return name + "-out", nil
	})

	execCtx, err := c.Execute(context.Background(), invoker, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"A"}, execCtx.FailedSteps())

	// B is skipped because its dependency failed; solo still runs.
	res, ok := execCtx.Result("B")
	require.True(t, ok)
	require.True(t, res.Skipped())
	require.Contains(t, res.Metadata["skip_reason"], "A")

	out, ok := execCtx.Output("solo")
	require.True(t, ok)
	require.Equal(t, "solo-out", out)
}

func TestChainOptionalFailureNeverAborts(t *testing.T) {
	t.Parallel()

	c := New("docs", Settings{FailFast: true}, newTestLogger(t))
	optional := NewStep("optional", "optional:")
	optional.Policy.Required = false
	c.AddStep(optional)
	c.AddStep(NewStep("after", "after:"))

	invoker := InvokerFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "optional:") {
			return "", errors.New("boom")
		}
		return "after-out", nil
	})

	execCtx, err := c.Execute(context.Background(), invoker, nil)
	require.NoError(t, err)

	out, ok := execCtx.Output("after")
	require.True(t, ok)
	require.Equal(t, "after-out", out)

	aborted, _ := execCtx.Metadata("aborted")
	require.Equal(t, false, aborted)
}

func TestChainStepMutationBetweenRuns(t *testing.T) {
	t.Parallel()

	c := New("docs", Settings{}, newTestLogger(t))
	c.AddStep(NewStep("a", "a"))
	c.AddStep(NewStep("b", "b"))

	require.Equal(t, []string{"a", "b"}, c.StepNames())

	step, ok := c.Step("b")
	require.True(t, ok)
	require.Equal(t, "b", step.Name)

	require.True(t, c.RemoveStep("a"))
	require.False(t, c.RemoveStep("a"))
	require.Equal(t, []string{"b"}, c.StepNames())

	_, ok = c.Step("a")
	require.False(t, ok)
}

func TestChainRecordsRunMetadata(t *testing.T) {
	t.Parallel()

	c := threeStepChain(t, Settings{})

	execCtx, err := c.Execute(context.Background(), stepNameInvoker(), map[string]any{"seed": "x"})
	require.NoError(t, err)

	name, ok := execCtx.Metadata("chain")
	require.True(t, ok)
	require.Equal(t, "docs", name)

	record := execCtx.ToRecord()
	require.True(t, record.Completed)
	require.Len(t, record.Results, 3)
}

func TestDocumentationChainFactoryShape(t *testing.T) {
	t.Parallel()

	c := NewDocumentationChain(Settings{FailFast: true}, newTestLogger(t))
	require.Equal(t, []string{"overview", "api_reference", "usage_examples"}, c.StepNames())

	usage, ok := c.Step("usage_examples")
	require.True(t, ok)
	require.False(t, usage.Policy.Required)
	require.True(t, usage.Policy.SkipOnFailure)

	execCtx, err := c.Execute(context.Background(), staticInvoker("  generated  "), map[string]any{
		"project": "docsmith",
		"code":    "package main",
	})
	require.NoError(t, err)
	require.Empty(t, execCtx.FailedSteps())

	// The usage step trims its output via transform.
	out, ok := execCtx.Output("usage_examples")
	require.True(t, ok)
	require.Equal(t, "generated", out)
}
