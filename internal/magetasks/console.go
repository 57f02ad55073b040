package magetasks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// PrintH1Header prints a top-level header between rules.
func PrintH1Header(title string) {
	width := 80
	rule := strings.Repeat("=", width)
	padding := max((width-len(title))/2, 0)
	fmt.Printf("\n%s\n%s%s\n%s\n\n", rule, strings.Repeat(" ", padding), headerStyle.Render(title), rule)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Printf("\n%s\n\n", headerStyle.Render("=== "+title+" ==="))
}

// PrintStep prints the label of a command about to run.
func PrintStep(label string) {
	fmt.Println(stepStyle.Render("▸ " + label))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render("✅ " + msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Println(warningStyle.Render("⚠️  " + msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render("❌ " + msg))
}
