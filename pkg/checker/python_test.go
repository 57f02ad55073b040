package checker

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

const (
	goodPython = "class Example:\n\n    def __init__(self, value):\n        self.value = value\n"

	badSyntaxPython = "class Test(\n    def __init__(self, val):\n        pass\n"

	uglyPython = "class Test:\n def __init__(self):\n  a = b\n"

	uglyStylePython = "class Test:\n\n    def __init__(self):\n        a =  \"okay\"\n"

	uglyStyleLinesPython = `a = 1
# Post comment.


# Pre comment.
class Test:

    # Pre comment.
    def __init__(self):
        # Inter comment.
        self.a = "okay"
`
)

func parsePython(t *testing.T, src string) *sitter.Node {
	t.Helper()
	tree, err := parse(context.Background(), python.GetLanguage(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

func TestPython_CleanModule(t *testing.T) {
	c := runChecker(t, NewPython, "lib/example.py", goodPython, options.Default())
	assert.Empty(t, c.Findings)
}

func TestPython_CommentsAndBlankLines(t *testing.T) {
	c := runChecker(t, NewPython, "lib/example.py", uglyStyleLinesPython, options.Default())
	assert.Empty(t, c.Findings)
}

func TestPython_CompileFailureStopsAnalysis(t *testing.T) {
	c := runChecker(t, NewPython, "lib/bad.py", badSyntaxPython, options.Default())

	require.Len(t, c.Findings, 1)
	f := c.Findings[0]
	assert.Equal(t, "Could not compile; invalid syntax: def __init__(self, val):", f.Message)
	assert.Equal(t, report.SeverityError, f.Severity)
	assert.Equal(t, 2, f.Line)
}

func TestPython_CompilerOnlyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{
			name: "dedent to unknown level",
			src:  "if True:\n        a = 1\n    b = 1\n",
			line: 3,
			msg:  "Could not compile; unindent does not match any outer indentation level: b = 1",
		},
		{
			name: "plain parameter after default",
			src:  "def f(a=1, b):\n    pass\n",
			line: 1,
			msg:  "Could not compile; non-default argument follows default argument: def f(a=1, b):",
		},
		{
			name: "lambda parameter after default",
			src:  "g = lambda a=1, b: a\n",
			line: 1,
			msg:  "Could not compile; non-default argument follows default argument: g = lambda a=1, b: a",
		},
		{
			name: "earliest error wins",
			src:  "def f(a=1, b):\n    if a:\n            pass\n        return b\n",
			line: 1,
			msg:  "Could not compile; non-default argument follows default argument: def f(a=1, b):",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := runChecker(t, NewPython, "lib/bad.py", tt.src, options.Default())

			require.Len(t, c.Findings, 1)
			assert.Equal(t, tt.line, c.Findings[0].Line)
			assert.Equal(t, tt.msg, c.Findings[0].Message)
			assert.Equal(t, report.SeverityError, c.Findings[0].Severity)
		})
	}
}

func TestPython_ValidSignaturesAndIndents(t *testing.T) {
	for _, src := range []string{
		"def f(a=1, *, b):\n    return a, b\n",
		"def f(a=1, *args, b, **kw):\n    return a, args, b, kw\n",
		"def f(a, b=1, /, c=2):\n    return a, b, c\n",
		"def f(a: int = 1, *args: int):\n    return a, args\n",
		"if True:\n    if True:\n        a = 1\n    b = 2\nc = 3\nprint(a, b, c)\n",
		"x = (1,\n  2)\n# comment\n   # odd comment\nprint(x)\n",
	} {
		c := runChecker(t, NewPython, "lib/ok.py", src, options.Default())
		for _, f := range c.Findings {
			assert.NotContains(t, f.Message, "Could not compile", src)
		}
	}
}

func TestPython_FlakesThroughChecker(t *testing.T) {
	c := runChecker(t, NewPython, "lib/ugly.py", uglyPython, options.Default())

	var flakes []report.Message
	for _, f := range c.Findings {
		if f.Category == "pyflakes" {
			assert.Equal(t, report.SeverityError, f.Severity)
			flakes = append(flakes, report.Message{Line: f.Line, Text: f.Message})
		}
	}
	assert.Equal(t, []report.Message{
		{Line: 3, Text: "undefined name 'b'"},
		{Line: 3, Text: "local variable 'a' is assigned to but never used"},
	}, flakes)
}

func TestPython_StyleFindingsAreInfo(t *testing.T) {
	c := runChecker(t, NewPython, "lib/ugly.py", "x = [1,2]\n", options.Default())

	require.Len(t, c.Findings, 1)
	assert.Equal(t, report.Finding{
		Line:     1,
		Message:  "E231 missing whitespace after ','",
		Severity: report.SeverityInfo,
		BaseDir:  "lib",
		FileName: "ugly.py",
		Category: "pycodestyle",
	}, c.Findings[0])
}

func TestPython_UnterminatedStatementIsError(t *testing.T) {
	r, c := newCollector()
	p := NewPython("lib/bad.py", badSyntaxPython, r, options.Default()).(*Python)
	p.checkStyle(p.Text)

	assert.Equal(t, []report.Message{{Line: 4, Text: "EOF in multi-line statement"}}, c.Messages)
	assert.Equal(t, report.SeverityError, c.Findings[0].Severity)
}

func TestPython_TextChecks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []report.Message
	}{
		{
			name: "pdb",
			text: "import pdb; pdb." + "set_trace()",
			want: []report.Message{{Line: 1, Text: "Line contains a call to pdb."}},
		},
		{
			name: "ascii source with utf-8 text",
			text: "a = 'this is utf-8 [\u272a]'",
			want: []report.Message{{Line: 1, Text: "Non-ascii characer at position 21."}},
		},
		{
			name: "declared utf-8",
			text: "# -*- coding: utf-8 -*-\na = 'this is utf-8 [\u272a]'",
		},
		{
			name: "conflicts",
			text: ">>>>>>> branch\n",
			want: []report.Message{{Line: 1, Text: "File has conflicts."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := newCollector()
			p := NewPython("bogus", tt.text, r, nil).(*Python)
			p.checkText()
			assert.Equal(t, tt.want, c.Messages)
		})
	}
}

func TestPython_DeclaredEncodingIsDecoded(t *testing.T) {
	r, _ := newCollector()
	text := "# coding: latin1\nname = '\xe9'\n"
	p := NewPython("bogus", text, r, nil).(*Python)
	p.checkText()

	assert.Equal(t, "latin1", p.encoding)
	assert.Equal(t, "# coding: latin1\nname = 'é'\n", string(p.source(context.Background())))
}

func TestPython_StyleSeesDecodedSource(t *testing.T) {
	// Each character is two bytes in Shift JIS but one once decoded.
	wide := strings.Repeat("\x82\xa0", 45)
	text := "# coding: shift_jis\nx = '" + wide + "'\n"

	c := runChecker(t, NewPython, "lib/jp.py", text, options.Default())
	for _, f := range c.Findings {
		assert.NotContains(t, f.Message, "E501", f.Message)
	}
}

func TestPython_ComplexityOption(t *testing.T) {
	src := `def branchy(x):
    if x:
        return 1
    elif x > 2:
        return 2
    for i in range(x):
        print(i)
    return 0
`
	opts := options.Default()
	opts.MaxComplexity = 3

	c := runChecker(t, NewPython, "lib/branchy.py", src, opts)

	require.Len(t, c.Findings, 1)
	assert.Equal(t, "C901 'branchy' is too complex (4)", c.Findings[0].Message)
	assert.Equal(t, "mccabe", c.Findings[0].Category)
	assert.Equal(t, 1, c.Findings[0].Line)
}

func TestComplexity_NamesMethods(t *testing.T) {
	src := "class A:\n    def m(self):\n        while True:\n            pass\n\n\ndef f():\n    pass\n"
	got := Complexity(parsePython(t, src), []byte(src))

	assert.Equal(t, []FunctionComplexity{
		{Name: "A.m", Line: 2, Complexity: 2},
		{Name: "f", Line: 7, Complexity: 1},
	}, got)
}

func TestFirstSyntaxError_CleanTree(t *testing.T) {
	assert.Nil(t, firstSyntaxError(parsePython(t, goodPython), []byte(goodPython)))
}
