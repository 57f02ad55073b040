package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/scame/pkg/render"
)

// ConsoleSink prints findings grouped under a header naming their file.
// A header is printed whenever the file differs from the previous
// finding's, so findings of one file must arrive together.
type ConsoleSink struct {
	w     io.Writer
	theme render.Theme
	width int

	lastFile *fileKey
}

// NewConsoleSink returns a console sink writing to w. A positive width
// truncates long messages to fit the terminal.
func NewConsoleSink(w io.Writer, theme render.Theme, width int) *ConsoleSink {
	return &ConsoleSink{w: w, theme: theme, width: width}
}

// Accept prints f, preceded by its file header when needed.
func (c *ConsoleSink) Accept(f Finding) {
	c.printHeader(f.BaseDir, f.FileName)

	lineNo := c.theme.LineNo.Render(fmt.Sprintf("%4d", f.Line))
	prefix := "    " + lineNo + ":"
	used := 4 + 4 + 1
	if f.Category != "" {
		prefix += c.theme.Category.Render(f.Category) + ":"
		used += runewidth.StringWidth(f.Category) + 1
	}

	msg := f.Message
	if c.width > 0 {
		if avail := c.width - used - 1; avail > 10 {
			msg = runewidth.Truncate(msg, avail, "…")
		}
	}
	style := c.theme.Info
	if f.Severity.IsError() {
		style = c.theme.Error
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, style.Render(msg))
}

// Reset forgets the last file, so the next finding starts with a header.
func (c *ConsoleSink) Reset() {
	c.lastFile = nil
}

func (c *ConsoleSink) printHeader(baseDir, fileName string) {
	if fileName == "" {
		return
	}
	key := fileKey{baseDir: baseDir, fileName: fileName}
	if c.lastFile != nil && *c.lastFile == key {
		return
	}
	c.lastFile = &key
	fmt.Fprintln(c.w, c.theme.File.Render(displayPath(baseDir, fileName)))
}

// displayPath mirrors "./dir/file" for relative paths.
func displayPath(baseDir, fileName string) string {
	p := filepath.Join(baseDir, fileName)
	if filepath.IsAbs(p) || strings.HasPrefix(p, "..") {
		return p
	}
	return "./" + filepath.ToSlash(p)
}

// Tally counts findings per file for the end-of-run summary.
type Tally struct {
	order []string
	files map[string]*render.FileCount
	sum   render.Summary
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{files: make(map[string]*render.FileCount)}
}

// Accept counts f.
func (t *Tally) Accept(f Finding) {
	p := f.Path()
	fc, ok := t.files[p]
	if !ok {
		fc = &render.FileCount{Path: p}
		t.files[p] = fc
		t.order = append(t.order, p)
	}
	fc.Findings++
	t.sum.Findings++
	if f.Severity.IsError() {
		fc.Errors++
		t.sum.Errors++
	} else {
		t.sum.Infos++
	}
}

// Summary returns the counts gathered so far.
func (t *Tally) Summary() render.Summary {
	s := t.sum
	s.Files = make([]render.FileCount, 0, len(t.order))
	for _, p := range t.order {
		s.Files = append(s.Files, *t.files[p])
	}
	return s
}
