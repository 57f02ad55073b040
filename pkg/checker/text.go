package checker

import (
	"context"

	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// AnyText checks line length, trailing whitespace and conflict markers.
// It is the checker for every language without a dedicated one.
type AnyText struct {
	Base
}

// NewAnyText is the Factory of AnyText.
func NewAnyText(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &AnyText{Base: NewBase(path, text, r, opts)}
}

// Check implements Checker.
func (c *AnyText) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()
	c.checkText()
}

func (c *AnyText) checkText() {
	c.eachLine(c.checkLength, c.checkTrailingWhitespace, c.checkConflicts)
}

// SQL checks trailing whitespace, tabs and conflict markers. Long lines
// are common in SQL and are not reported.
type SQL struct {
	Base
}

// NewSQL is the Factory of SQL.
func NewSQL(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &SQL{Base: NewBase(path, text, r, opts)}
}

// Check implements Checker.
func (c *SQL) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()
	c.eachLine(c.checkTrailingWhitespace, c.checkTab, c.checkConflicts)
}
