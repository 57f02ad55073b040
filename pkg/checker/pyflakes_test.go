package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flakes(t *testing.T, src string) []Warning {
	t.Helper()
	return NewFlakes([]byte(src)).Check(parsePython(t, src))
}

func TestFlakes_UndefinedAndUnused(t *testing.T) {
	assert.Equal(t, []Warning{
		{Line: 3, Message: "undefined name 'b'"},
		{Line: 3, Message: "local variable 'a' is assigned to but never used"},
	}, flakes(t, uglyPython))
}

func TestFlakes_CleanModule(t *testing.T) {
	assert.Empty(t, flakes(t, goodPython))
}

func TestFlakes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Warning
	}{
		{
			name: "unused import",
			src:  "import os\n",
			want: []Warning{{1, "'os' imported but unused"}},
		},
		{
			name: "exported import",
			src:  "import os\n__all__ = ['os']\n",
		},
		{
			name: "redefinition",
			src:  "import os\nimport os\n",
			want: []Warning{
				{2, "redefinition of unused 'os' from line 1"},
				{2, "'os' imported but unused"},
			},
		},
		{
			name: "conditional import",
			src:  "try:\n    import json\nexcept ImportError:\n    import simplejson as json\nprint(json)\n",
		},
		{
			name: "forward reference from function",
			src:  "def f():\n    return g()\n\n\ndef g():\n    return 1\n",
		},
		{
			name: "ignore marker",
			src:  "import os  # pyflakes:ignore\n",
		},
		{
			name: "wildcard import",
			src:  "from os import *\nprint(path)\n",
			want: []Warning{{1, "'from os import *' used; unable to detect undefined names"}},
		},
		{
			name: "comprehension",
			src:  "def f(xs):\n    return [x for x in xs]\n",
		},
		{
			name: "global assignment",
			src:  "def f():\n    global counter\n    counter = 1\n",
		},
		{
			name: "locals keeps assignments",
			src:  "def f():\n    a = 1\n    return locals()\n",
		},
		{
			name: "class scope is not visible from methods",
			src:  "class A:\n    size = 1\n\n    def m(self):\n        return size\n",
			want: []Warning{{5, "undefined name 'size'"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flakes(t, tt.src))
		})
	}
}

func TestFlakes_IgnoreHook(t *testing.T) {
	src := "import os\nimport sys\n"
	f := NewFlakes([]byte(src))
	f.Ignore = func(line int) bool { return line == 1 }

	assert.Equal(t, []Warning{{2, "'sys' imported but unused"}}, f.Check(parsePython(t, src)))
}
