package docgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/docsmith/internal/chain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Summary renders a terminal-friendly report of a chain run.
func Summary(execCtx *chain.Context) string {
	var b strings.Builder

	chainName, _ := execCtx.Metadata("chain")
	b.WriteString(titleStyle.Render(fmt.Sprintf("Chain %v", chainName)))
	b.WriteString("\n")

	succeeded := 0
	for _, name := range execCtx.ResultNames() {
		res, _ := execCtx.Result(name)

		var line string
		switch {
		case res.Succeeded():
			succeeded++
			line = successStyle.Render("✓") + " " + name
		case res.Failed():
			line = failedStyle.Render("✗") + " " + name + faintStyle.Render(" — "+res.Err.Error())
		default:
			reason := ""
			if r, ok := res.Metadata["skip_reason"]; ok {
				reason = faintStyle.Render(fmt.Sprintf(" — %v", r))
			}
			line = skippedStyle.Render("-") + " " + name + reason
		}
		b.WriteString(line)
		b.WriteString(faintStyle.Render(fmt.Sprintf(" (%s)", res.Duration.Round(time.Millisecond))))
		b.WriteString("\n")
	}

	total := len(execCtx.ResultNames())
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d/%d steps succeeded in %s", succeeded, total, execCtx.Elapsed().Round(time.Millisecond))))
	b.WriteString("\n")

	return b.String()
}
