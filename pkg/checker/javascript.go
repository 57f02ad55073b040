package checker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// JavaScript runs an external linter over scripts, then the line checks.
// The linter prints one "line::column::message" record per problem.
type JavaScript struct {
	Base
}

// NewJavaScript is the Factory of JavaScript.
func NewJavaScript(path, text string, r *report.Reporter, opts *options.Options) Checker {
	return &JavaScript{Base: NewBase(path, text, r, opts)}
}

// Check implements Checker.
func (c *JavaScript) Check(ctx context.Context) {
	if c.Text == "" {
		return
	}
	defer c.guard()

	c.checkLint(ctx)
	c.eachLine(c.checkDebugger, c.checkLength, c.checkTrailingWhitespace, c.checkConflicts, c.checkTab)
}

func (c *JavaScript) checkDebugger(n int, line string) {
	if strings.Contains(line, "debugger;") {
		c.Message(n, "Line contains a call to debugger.", report.SeverityError, "")
	}
}

// checkLint reports the linter's findings. A missing linter is silent.
func (c *JavaScript) checkLint(ctx context.Context) {
	log := logging.Scoped(ctx, "javascript")

	var cfg options.JavaScript
	if c.Options != nil {
		cfg = c.Options.JavaScript
	}
	linter, err := findTool(cfg.Linters)
	if err != nil {
		log.Debug("skipping lint", "file", c.Path, "error", err)
		return
	}

	path, cleanup, err := c.onDisk()
	if err != nil {
		log.Debug("skipping lint", "file", c.Path, "error", err)
		return
	}
	defer cleanup()

	args := append(append([]string(nil), cfg.Args...), path)
	lines, err := runTool(ctx, c.Options.Timeout(), linter, args...)
	if errors.Is(err, ErrLinterTimeout) {
		msg := fmt.Sprintf("JavaScript linter timed out after %s", c.Options.Timeout())
		c.Message(0, msg, report.SeverityError, "jslint")
		return
	}
	if err != nil {
		log.Debug("lint failed", "file", c.Path, "error", err)
	}
	for _, line := range lines {
		n, msg, ok := parseLintRecord(line)
		if !ok {
			log.Debug("unexpected linter output", "file", c.Path, "line", line)
			continue
		}
		c.Message(n-1, msg, report.SeverityError, "jslint")
	}
}

// onDisk returns a path holding the checked text. Unsaved buffers are
// written to a temporary file removed by cleanup.
func (c *JavaScript) onDisk() (string, func(), error) {
	if data, err := os.ReadFile(c.Path); err == nil && string(data) == c.Text {
		return c.Path, func() {}, nil
	}
	f, err := os.CreateTemp("", "scame-*.js")
	if err != nil {
		return "", nil, fmt.Errorf("creating temporary script: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.WriteString(c.Text); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temporary script: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temporary script: %w", err)
	}
	return f.Name(), cleanup, nil
}

// parseLintRecord splits "line::column::message".
func parseLintRecord(record string) (int, string, bool) {
	parts := strings.SplitN(record, "::", 3)
	if len(parts) != 3 {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", false
	}
	return n, parts[2], true
}
