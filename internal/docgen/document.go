package docgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/docsmith/internal/chain"
)

// Assemble renders the outputs of a completed chain run as a single
// markdown document, one section per successful step in completion
// order.
func Assemble(project string, execCtx *chain.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", project)

	if commit, ok := execCtx.Input("commit"); ok {
		fmt.Fprintf(&b, "> Generated from commit `%v`", commit)
		if branch, ok := execCtx.Input("branch"); ok {
			fmt.Fprintf(&b, " on branch `%v`", branch)
		}
		b.WriteString("\n\n")
	}

	for _, name := range execCtx.ResultNames() {
		output, ok := execCtx.Output(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sectionTitle(name), strings.TrimSpace(output))
	}

	fmt.Fprintf(&b, "---\n\n_Generated %s_\n", time.Now().Format(time.RFC3339))
	return b.String()
}

// sectionTitle turns a step name like "api_reference" into "Api Reference".
func sectionTitle(name string) string {
	words := strings.Split(name, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
