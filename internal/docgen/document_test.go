package docgen

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/docsmith/internal/chain"
)

func contextWithResults(t *testing.T) *chain.Context {
	t.Helper()

	execCtx := chain.NewContext()
	execCtx.SetInput("commit", "abc1234")
	execCtx.SetInput("branch", "main")
	execCtx.SetMetadata("chain", "documentation")

	require.NoError(t, execCtx.RecordResult(&chain.Result{
		StepName: "overview", Status: chain.StatusSuccess, Output: "The overview.",
		Duration: 42 * time.Millisecond, CompletedAt: time.Now(),
	}))
	require.NoError(t, execCtx.RecordResult(&chain.Result{
		StepName: "api_reference", Status: chain.StatusFailed, Err: errors.New("backend down"),
		CompletedAt: time.Now(),
	}))
	require.NoError(t, execCtx.RecordResult(&chain.Result{
		StepName: "usage_examples", Status: chain.StatusSkipped,
		Metadata:    map[string]any{"skip_reason": "unsatisfied dependencies: api_reference"},
		CompletedAt: time.Now(),
	}))
	execCtx.MarkComplete()
	return execCtx
}

func TestAssembleIncludesSuccessfulSectionsOnly(t *testing.T) {
	t.Parallel()

	doc := Assemble("docsmith", contextWithResults(t))

	require.Contains(t, doc, "# docsmith")
	require.Contains(t, doc, "`abc1234`")
	require.Contains(t, doc, "## Overview")
	require.Contains(t, doc, "The overview.")
	require.NotContains(t, doc, "## Api Reference")
	require.NotContains(t, doc, "## Usage Examples")
}

func TestSectionTitle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Api Reference", sectionTitle("api_reference"))
	require.Equal(t, "Overview", sectionTitle("overview"))
}

func TestSummaryListsEveryResult(t *testing.T) {
	t.Parallel()

	out := Summary(contextWithResults(t))

	require.Contains(t, out, "overview")
	require.Contains(t, out, "api_reference")
	require.Contains(t, out, "usage_examples")
	require.Contains(t, out, "backend down")
	require.Contains(t, out, "1/3 steps succeeded")
}
