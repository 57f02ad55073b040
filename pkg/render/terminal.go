package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// leaderboardSize caps the number of files listed in the summary.
const leaderboardSize = 5

// Terminal renders summaries as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats the run summary for terminal display.
func (t *Terminal) Render(s Summary) string {
	var sb strings.Builder
	if s.Findings == 0 {
		sb.WriteString(t.theme.Success.Render(t.theme.Icons.Pass + " no problems found"))
		sb.WriteString("\n")
		return sb.String()
	}

	icon, style := t.theme.Icons.Info, t.theme.Info
	if s.Errors > 0 {
		icon, style = t.theme.Icons.Error, t.theme.Error
	}
	header := fmt.Sprintf("%s %s in %s (%d errors, %d info)",
		icon, plural(s.Findings, "problem"), plural(len(s.Files), "file"), s.Errors, s.Infos)
	sb.WriteString(style.Render(header))
	sb.WriteString("\n")

	top := s.Top(leaderboardSize)
	if len(top) < 2 {
		return sb.String()
	}

	maxName := 0
	for _, fc := range top {
		if w := runewidth.StringWidth(fc.Path); w > maxName {
			maxName = w
		}
	}
	if limit := t.width - 16; limit > 10 && maxName > limit {
		maxName = limit
	}
	for i, fc := range top {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("%2d. ", i+1)))
		name := runewidth.Truncate(fc.Path, maxName, "...")
		sb.WriteString(t.theme.Bold.Render(runewidth.FillRight(name, maxName)))
		sb.WriteString("  ")
		sb.WriteString(t.countStyle(fc).Render(fmt.Sprintf("%4d", fc.Findings)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) countStyle(fc FileCount) lipgloss.Style {
	if fc.Errors > 0 {
		return t.theme.Error
	}
	return t.theme.Category
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
