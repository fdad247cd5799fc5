package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(26)

	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// renderBoard draws one column per stage, side by side.
func renderBoard(job *models.Job, view pipeline.View) string {
	columns := make([]string, 0, len(view))
	for _, group := range view {
		columns = append(columns, columnStyle.Render(renderColumn(group)))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(job.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d", labelStyle.Render("Total Applications:"), len(view.Flatten()))
	return b.String()
}

func renderColumn(group pipeline.StageGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n", labelStyle.Render(group.Stage), len(group.Applications))
	if len(group.Applications) == 0 {
		b.WriteString(mutedStyle.Render("empty"))
		return b.String()
	}
	for i, app := range group.Applications {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s", app.CandidateName)
		if app.Scorecard != nil {
			fmt.Fprintf(&b, " %s", strings.Repeat("★", app.Scorecard.Rating))
		}
		fmt.Fprintf(&b, "\n  %s", mutedStyle.Render(app.ID.String()[:8]))
	}
	return b.String()
}
