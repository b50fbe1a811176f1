package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/projectboard/internal/client/models"
)

// Column widths for project listings. Titles longer than their column
// are truncated with an ellipsis.
const (
	columnWidthID    = 6
	columnWidthPhase = 13
	columnWidthDate  = 12
	columnWidthOwner = 16
	columnWidthTitle = 40
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(14)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func phaseColor(phase string) lipgloss.Color {
	switch phase {
	case "design":
		return lipgloss.Color("13")
	case "development":
		return lipgloss.Color("12")
	case "testing":
		return lipgloss.Color("11")
	case "deployment":
		return lipgloss.Color("14")
	case "complete":
		return lipgloss.Color("10")
	default:
		return lipgloss.Color("7")
	}
}

func cell(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width)
}

// renderList renders projects as one row each. The owner column is left
// out for the caller's own projects.
func renderList(list []models.Project, withOwner bool) string {
	if len(list) == 0 {
		return faintStyle.Render("No projects found.") + "\n"
	}

	var b strings.Builder

	header := cell(columnWidthID).Render("ID") +
		cell(columnWidthPhase).Render("PHASE") +
		cell(columnWidthDate).Render("START")
	if withOwner {
		header += cell(columnWidthOwner).Render("OWNER")
	}
	header += "TITLE"
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, p := range list {
		row := cell(columnWidthID).Render(fmt.Sprintf("%d", p.ID)) +
			cell(columnWidthPhase).Foreground(phaseColor(p.Phase)).Render(p.Phase) +
			cell(columnWidthDate).Render(p.StartDate)
		if withOwner {
			row += cell(columnWidthOwner).Render(truncate(p.UserName, columnWidthOwner-1))
		}
		row += truncate(p.Title, columnWidthTitle)
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString(faintStyle.Render(fmt.Sprintf("%d project(s)", len(list))))
	b.WriteString("\n")
	return b.String()
}

func renderProject(p *models.Project) string {
	var b strings.Builder

	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("#%d %s", p.ID, p.Title)))
	b.WriteString("\n")
	line("Phase", lipgloss.NewStyle().Foreground(phaseColor(p.Phase)).Render(p.Phase))
	line("Start date", p.StartDate)
	line("End date", p.EndDateText())
	line("Description", p.ShortDescription)
	if p.UserName != "" {
		owner := p.UserName
		if p.OwnerEmail != "" {
			owner += " <" + p.OwnerEmail + ">"
		}
		line("Owner", owner)
	}
	if !p.CreatedAt.IsZero() {
		line("Created", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return b.String()
}

// truncate shortens s to at most width display cells.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
