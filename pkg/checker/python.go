package checker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// encodingPattern is the PEP 263 coding declaration.
var encodingPattern = regexp.MustCompile(`coding[:=]\s*([-\w.]+)`)

// Python checks Python modules: text checks, compilation, static analysis,
// optional complexity and style conventions.
type Python struct {
	Base
	encoding string
}

// NewPython is the Factory of Python.
func NewPython(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &Python{Base: NewBase(path, text, r, opts), encoding: "ascii"}
}

// Check implements Checker.
func (c *Python) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()

	c.checkText()

	src := c.source(ctx)
	tree, err := parse(ctx, python.GetLanguage(), src)
	if err != nil {
		logging.Scoped(ctx, "python").Debug("parse aborted", "file", c.Path, "error", err)
		return
	}
	defer tree.Close()

	root := tree.RootNode()
	if !c.checkCompile(root, src) {
		return
	}
	c.checkFlakes(root, src)
	c.checkComplexity(root, src)
	c.checkStyle(string(src))
}

// checkText looks for the coding declaration, debugger calls, conflict
// markers and non-ASCII characters in ASCII sources.
func (c *Python) checkText() {
	c.eachLine(func(n int, line string) {
		if n <= 2 {
			if m := encodingPattern.FindStringSubmatch(line); m != nil {
				c.encoding = strings.ToLower(m[1])
			}
		}
	}, c.checkPdb, c.checkConflicts, c.checkASCII)
}

func (c *Python) checkPdb(n int, line string) {
	if strings.Contains(line, "pdb."+"set_trace") || strings.Contains(line, "breakpoint()") {
		c.Message(n, "Line contains a call to pdb.", report.SeverityError, "")
	}
}

func (c *Python) checkASCII(n int, line string) {
	if c.encoding != "ascii" {
		return
	}
	pos := 0
	for _, r := range line {
		pos++
		if r >= 0x80 {
			c.Message(n, fmt.Sprintf("Non-ascii characer at position %d.", pos), report.SeverityError, "")
			return
		}
	}
}

// source returns the text as UTF-8, decoding it from the declared
// encoding when that is neither ASCII nor UTF-8.
func (c *Python) source(ctx context.Context) []byte {
	switch c.encoding {
	case "ascii", "utf-8", "utf8", "us-ascii":
		return []byte(c.Text)
	}
	enc, err := htmlindex.Get(c.encoding)
	if err != nil {
		logging.Scoped(ctx, "python").Debug("unknown source encoding", "file", c.Path, "encoding", c.encoding)
		return []byte(c.Text)
	}
	decoded, err := enc.NewDecoder().String(c.Text)
	if err != nil {
		logging.Scoped(ctx, "python").Debug("decode failed", "file", c.Path, "encoding", c.encoding, "error", err)
		return []byte(c.Text)
	}
	return []byte(decoded)
}

// checkCompile reports the first syntax error. It reports whether the
// module compiled.
func (c *Python) checkCompile(root *sitter.Node, src []byte) bool {
	if e := compileError(root, src); e != nil {
		c.Message(e.Line, e.Message(), report.SeverityError, "")
		return false
	}
	return true
}

// checkFlakes reports undefined and unused names.
func (c *Python) checkFlakes(root *sitter.Node, src []byte) {
	for _, w := range NewFlakes(src).Check(root) {
		c.Message(w.Line, w.Message, report.SeverityError, "pyflakes")
	}
}

func (c *Python) checkComplexity(root *sitter.Node, src []byte) {
	limit := -1
	if c.Options != nil {
		limit = c.Options.MaxComplexity
	}
	if limit <= 0 {
		return
	}
	for _, fc := range Complexity(root, src) {
		if fc.Complexity > limit {
			msg := fmt.Sprintf("C901 '%s' is too complex (%d)", fc.Name, fc.Complexity)
			c.Message(fc.Line, msg, report.SeverityInfo, "mccabe")
		}
	}
}

// checkStyle runs the style conventions over the decoded source. The style
// limit is one less than the configured line length, matching pycodestyle's
// counting.
func (c *Python) checkStyle(text string) {
	style := &Style{
		MaxLineLength: c.MaxLength() - 1,
		HangClosing:   c.Options == nil || c.Options.HangClosing,
		Report: func(line, _ int, code, text string) {
			c.Message(line, code+" "+text, report.SeverityInfo, "pycodestyle")
		},
	}
	if err := style.Check(text); err != nil {
		c.Message(err.Line, err.Msg, report.SeverityError, "pycodestyle")
	}
}
