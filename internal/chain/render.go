package chain

import (
	"regexp"
	"strings"
	"text/template"

	docsmitherrors "github.com/alexisbeaulieu97/docsmith/pkg/errors"
)

var missingKeyPattern = regexp.MustCompile(`map has no entry for key "([^"]+)"`)

// renderPrompt substitutes every placeholder in the step template.
// Placeholders naming a step resolve to that step's successful output;
// anything else resolves from the context inputs. A placeholder that
// resolves to neither is a rendering error.
func renderPrompt(step *Step, execCtx *Context) (string, error) {
	tmpl, err := template.New(step.Name).Option("missingkey=error").Parse(step.Template)
	if err != nil {
		return "", docsmitherrors.NewRenderError(step.Name, "", err)
	}

	data := make(map[string]any, len(execCtx.inputs)+len(execCtx.order))
	for key, value := range execCtx.inputs {
		data[key] = value
	}
	// Step outputs shadow inputs of the same name.
	for name, output := range execCtx.AllOutputs() {
		data[name] = output
	}

	var rendered strings.Builder
	if err := tmpl.Execute(&rendered, data); err != nil {
		placeholder := ""
		if match := missingKeyPattern.FindStringSubmatch(err.Error()); match != nil {
			placeholder = match[1]
		}
		return "", docsmitherrors.NewRenderError(step.Name, placeholder, err)
	}

	return rendered.String(), nil
}
