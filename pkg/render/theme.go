package render

import "github.com/charmbracelet/lipgloss"

// Theme defines the styles and icons used for terminal output.
type Theme struct {
	Name     string
	File     lipgloss.Style // file header
	LineNo   lipgloss.Style
	Category lipgloss.Style
	Info     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Icons    ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass  string
	Error string
	Info  string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:     "default",
		File:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")), // blue
		LineNo:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),           // gray
		Category: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),           // orange
		Info:     lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Bold:     lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:  "✓",
			Error: "✗",
			Info:  "●",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:     "orca",
		File:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")), // pale blue
		LineNo:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Category: lipgloss.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Info:     lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Bold:     lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:  "✓",
			Error: "✗",
			Info:  "·",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:     "mono",
		File:     lipgloss.NewStyle(),
		LineNo:   lipgloss.NewStyle(),
		Category: lipgloss.NewStyle(),
		Info:     lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle(),
		Success:  lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle(),
		Bold:     lipgloss.NewStyle(),
		Icons: ThemeIcons{
			Pass:  "+",
			Error: "x",
			Info:  "*",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
