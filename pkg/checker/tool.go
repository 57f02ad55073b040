package checker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// toolWaitDelay bounds the wait for output pipes after a killed tool.
const toolWaitDelay = 2 * time.Second

// findTool returns the path of the first candidate installed on PATH.
func findTool(candidates []string) (string, error) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrLinterNotFound
}

// runTool runs name with args and returns its standard output split into
// lines. The tool is killed when timeout expires. A non-zero exit status
// is not an error: linters exit non-zero when they find problems.
func runTool(ctx context.Context, timeout time.Duration, name string, args ...string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = toolWaitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	lines := readLines(&stdout)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return lines, &ToolError{Tool: name, Err: fmt.Errorf("%w after %s", ErrLinterTimeout, timeout)}
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return lines, &ToolError{Tool: name, Err: err, Output: strings.TrimSpace(stderr.String())}
	}
	return lines, nil
}

func readLines(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
