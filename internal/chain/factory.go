package chain

import (
	"strings"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

const overviewTemplate = `You are documenting the project "{{.project}}".

Source files:
{{.code}}

Write a concise overview of what this project does, its main components,
and how they fit together. Use plain prose, no headings.`

const apiReferenceTemplate = `You are documenting the project "{{.project}}".

Project overview:
{{.overview}}

Source files:
{{.code}}

Produce an API reference in markdown: one section per public type or
function, with a short description and signature.`

const usageExamplesTemplate = `You are documenting the project "{{.project}}".

Project overview:
{{.overview}}

API reference:
{{.api_reference}}

Write realistic usage examples in markdown code blocks, covering the most
common operations first.`

// NewDocumentationChain builds the standard documentation chain:
// an overview from the raw source, an API reference that builds on the
// overview, and usage examples that build on both.
func NewDocumentationChain(settings Settings, log *logger.Logger) *Chain {
	c := New("documentation", settings, log)

	c.AddStep(NewStep("overview", overviewTemplate))
	c.AddStep(NewStep("api_reference", apiReferenceTemplate, "overview"))

	usage := NewStep("usage_examples", usageExamplesTemplate, "overview", "api_reference")
	usage.Transform = func(raw string, _ *Context) (string, error) {
		return strings.TrimSpace(raw), nil
	}
	usage.Policy.Required = false
	usage.Policy.SkipOnFailure = true
	c.AddStep(usage)

	return c
}
