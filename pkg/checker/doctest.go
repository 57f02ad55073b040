package checker

import (
	"context"
	"strings"

	"github.com/smacker/go-tree-sitter/python"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// Doctest checks narrative test files: the text checks plus compilation
// of every interactive example.
type Doctest struct {
	Base
}

// NewDoctest is the Factory of Doctest.
func NewDoctest(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &Doctest{Base: NewBase(path, text, r, opts)}
}

// example is the source of one ">>> " prompt and its "... " continuations.
type example struct {
	line   int // 1-based line of the prompt
	source []string
}

// Check implements Checker.
func (c *Doctest) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()

	c.eachLine(c.checkLength, c.checkTrailingWhitespace, c.checkConflicts)
	for _, ex := range examples(c.Lines()) {
		c.checkExample(ctx, ex)
	}
}

func (c *Doctest) checkExample(ctx context.Context, ex example) {
	src := []byte(strings.Join(ex.source, "\n") + "\n")
	tree, err := parse(ctx, python.GetLanguage(), src)
	if err != nil {
		logging.Scoped(ctx, "doctest").Debug("parse aborted", "file", c.Path, "line", ex.line, "error", err)
		return
	}
	defer tree.Close()

	if e := compileError(tree.RootNode(), src); e != nil {
		line := ex.line
		if e.Line > 0 {
			line += e.Line - 1
		}
		c.Message(line, e.Message(), report.SeverityError, "")
	}
}

// examples collects the interactive examples of a doctest.
func examples(lines []string) []example {
	var out []example
	var cur *example
	for i, line := range lines {
		stripped := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(stripped, ">>> ") || stripped == ">>>":
			out = append(out, example{line: i + 1})
			cur = &out[len(out)-1]
			cur.source = append(cur.source, promptSource(stripped))
		case cur != nil && (strings.HasPrefix(stripped, "... ") || stripped == "..."):
			cur.source = append(cur.source, promptSource(stripped))
		default:
			cur = nil
		}
	}
	return out
}

func promptSource(line string) string {
	if len(line) <= 4 {
		return ""
	}
	return line[4:]
}
