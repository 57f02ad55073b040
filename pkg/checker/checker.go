// Package checker implements the per-language checkers and the dispatcher
// that selects one for a file.
//
// Every checker is built from a path, the file text, the shared reporter
// and the run options. Check never fails: parse errors, tool failures and
// panics inside third-party parsers are all turned into findings.
package checker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// Checker inspects one file and reports what it finds.
type Checker interface {
	Check(ctx context.Context)
}

// Factory constructs the checker for one file.
type Factory func(path, text string, r *report.Reporter, opts *options.Options) Checker

var (
	// ErrLinterNotFound means no candidate linter executable is installed.
	ErrLinterNotFound = errors.New("no linter executable found")

	// ErrLinterTimeout means a linter did not finish within the tool timeout.
	ErrLinterTimeout = errors.New("linter timed out")
)

// ToolError describes a failed external analyzer run.
type ToolError struct {
	Tool   string
	Err    error
	Output string
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Output)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Base holds the state every checker shares and the line checks they
// combine.
type Base struct {
	Path     string
	BaseDir  string
	FileName string
	Text     string
	Reporter *report.Reporter
	Options  *options.Options
}

// NewBase splits path into its directory and file name.
func NewBase(path, text string, r *report.Reporter, opts *options.Options) Base {
	return Base{
		Path:     path,
		BaseDir:  filepath.Dir(path),
		FileName: filepath.Base(path),
		Text:     text,
		Reporter: r,
		Options:  opts,
	}
}

// Message reports a finding in this checker's file.
func (b *Base) Message(line int, msg string, sev report.Severity, category string) {
	if b.Reporter == nil {
		return
	}
	if line < 0 {
		line = 0
	}
	b.Reporter.Report(report.Finding{
		Line:     line,
		Message:  msg,
		Severity: sev,
		BaseDir:  b.BaseDir,
		FileName: b.FileName,
		Category: category,
	})
}

// MaxLength returns the configured line length limit.
func (b *Base) MaxLength() int {
	return b.Options.LineLength()
}

// Lines returns the text split into lines without their terminators.
func (b *Base) Lines() []string {
	return splitLines(b.Text)
}

// guard turns a panic into an error finding. It must be deferred directly.
func (b *Base) guard() {
	if v := recover(); v != nil {
		b.Message(0, fmt.Sprintf("Checker failed: %v", v), report.SeverityError, "")
	}
}

// splitLines splits on \n, \r\n and \r. A final terminator does not start
// another line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
