package render

import (
	"fmt"
	"strings"
)

// Plain renders summaries as terse text without ANSI codes, for piped
// output and log files.
type Plain struct{}

// NewPlain creates a plain renderer.
func NewPlain() *Plain {
	return &Plain{}
}

// Render formats the run summary as a single SCOPE line followed by the
// files with the most findings.
func (p *Plain) Render(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SCOPE: %d files, %d findings (%d errors, %d info)\n",
		len(s.Files), s.Findings, s.Errors, s.Infos)
	for _, fc := range s.Top(leaderboardSize) {
		fmt.Fprintf(&sb, "  %s: %d\n", fc.Path, fc.Findings)
	}
	return sb.String()
}
