package checker

import (
	"context"

	"github.com/smacker/go-tree-sitter/bash"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// Shell checks shell scripts with the Bash grammar and the text checks.
type Shell struct {
	Base
}

// NewShell is the Factory of Shell.
func NewShell(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &Shell{Base: NewBase(path, text, r, opts)}
}

// Check implements Checker.
func (c *Shell) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()

	src := []byte(c.Text)
	tree, err := parse(ctx, bash.GetLanguage(), src)
	if err != nil {
		logging.Scoped(ctx, "shell").Debug("parse aborted", "file", c.Path, "error", err)
	} else {
		if e := firstSyntaxError(tree.RootNode(), src); e != nil {
			c.Message(e.Line, e.Message(), report.SeverityError, "")
		}
		tree.Close()
	}
	c.eachLine(c.checkLength, c.checkTrailingWhitespace, c.checkConflicts)
}
