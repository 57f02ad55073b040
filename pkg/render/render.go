// Package render renders the end-of-run summary of a check run and holds
// the terminal themes shared with the console sink.
package render

import "sort"

// FileCount is the number of findings reported for one file.
type FileCount struct {
	Path     string
	Findings int
	Errors   int
}

// Summary describes a finished check run.
type Summary struct {
	Files    []FileCount
	Findings int
	Errors   int
	Infos    int
}

// Top returns up to n files with the most findings, most first. Ties keep
// path order.
func (s Summary) Top(n int) []FileCount {
	files := make([]FileCount, len(s.Files))
	copy(files, s.Files)
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Findings != files[j].Findings {
			return files[i].Findings > files[j].Findings
		}
		return files[i].Path < files[j].Path
	})
	if n > 0 && len(files) > n {
		files = files[:n]
	}
	return files
}

// Renderer formats a Summary.
type Renderer interface {
	Render(s Summary) string
}
