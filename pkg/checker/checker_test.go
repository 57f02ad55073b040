package checker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

func newCollector() (*report.Reporter, *report.Collector) {
	c := report.NewCollector()
	return report.New(c), c
}

func runChecker(t *testing.T, factory Factory, path, text string, opts *options.Options) *report.Collector {
	t.Helper()
	r, c := newCollector()
	factory(path, text, r, opts).Check(context.Background())
	return c
}

func TestCheckers_EmptyTextHasNoFindings(t *testing.T) {
	factories := map[string]Factory{
		"text":       NewAnyText,
		"sql":        NewSQL,
		"python":     NewPython,
		"css":        NewCSS,
		"javascript": NewJavaScript,
		"xml":        NewXML,
		"shell":      NewShell,
		"doctest":    NewDoctest,
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			c := runChecker(t, factory, "lib/empty", "", nil)
			assert.Empty(t, c.Findings)
		})
	}
}

func TestAnyText_LineChecks(t *testing.T) {
	text := strings.Repeat("x", 81) + "\n" +
		"fine\n" +
		"trailing \n" +
		"<<<<<<< HEAD\n" +
		"\tTabs are fine here.\n"
	c := runChecker(t, NewAnyText, "lib/a.txt", text, nil)

	assert.Equal(t, []report.Message{
		{Line: 1, Text: "Line exceeds 80 characters."},
		{Line: 3, Text: "Line has trailing whitespace."},
		{Line: 4, Text: "File has conflicts."},
	}, c.Messages)
	assert.Equal(t, report.SeverityInfo, c.Findings[0].Severity)
	assert.Equal(t, report.SeverityError, c.Findings[2].Severity)
	assert.Equal(t, "lib", c.Findings[0].BaseDir)
	assert.Equal(t, "a.txt", c.Findings[0].FileName)
}

func TestAnyText_MaxLengthOption(t *testing.T) {
	opts := options.Default()
	opts.MaxLineLength = 10

	c := runChecker(t, NewAnyText, "a.txt", "0123456789\n0123456789x\n", opts)

	assert.Equal(t, []report.Message{{Line: 2, Text: "Line exceeds 10 characters."}}, c.Messages)
}

func TestAnyText_LengthCountsRunes(t *testing.T) {
	c := runChecker(t, NewAnyText, "a.txt", strings.Repeat("✪", 80)+"\n", nil)
	assert.Empty(t, c.Findings)
}

func TestSQL_SkipsLengthButReportsTabs(t *testing.T) {
	text := "SELECT " + strings.Repeat("a, ", 40) + "b FROM t;\n\tWHERE x = 1 \n"
	c := runChecker(t, NewSQL, "schema.sql", text, nil)

	assert.Equal(t, []report.Message{
		{Line: 2, Text: "Line has trailing whitespace."},
		{Line: 2, Text: "Line contains a tab character."},
	}, c.Messages)
}

func TestBase_GuardReportsPanics(t *testing.T) {
	r, c := newCollector()
	b := NewBase("lib/a.txt", "text", r, nil)

	func() {
		defer b.guard()
		panic("parser exploded")
	}()

	require.Len(t, c.Findings, 1)
	assert.Equal(t, 0, c.Findings[0].Line)
	assert.Equal(t, "Checker failed: parser exploded", c.Findings[0].Message)
	assert.Equal(t, report.SeverityError, c.Findings[0].Severity)
}

func TestBase_MessageClampsNegativeLines(t *testing.T) {
	r, c := newCollector()
	b := NewBase("a.js", "x", r, nil)
	b.Message(-1, "odd", report.SeverityInfo, "")

	require.Len(t, c.Findings, 1)
	assert.Equal(t, 0, c.Findings[0].Line)
}

func TestBase_NilReporterIsQuiet(t *testing.T) {
	b := NewBase("a.txt", "x", nil, nil)
	assert.NotPanics(t, func() { b.Message(1, "dropped", report.SeverityError, "") })
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\r\nb\rc\n", []string{"a", "b", "c"}},
		{"a\n\n", []string{"a", ""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitLines(tt.in), "input %q", tt.in)
	}
}

func TestToolError_Unwrap(t *testing.T) {
	err := &ToolError{Tool: "gjs", Err: ErrLinterTimeout, Output: "killed"}
	assert.ErrorIs(t, err, ErrLinterTimeout)
	assert.Equal(t, "gjs: linter timed out: killed", err.Error())
}
