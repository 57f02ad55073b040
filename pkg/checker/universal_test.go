package checker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/scame/pkg/language"
	"github.com/dkoosis/scame/pkg/options"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		lang language.Language
		want Checker
	}{
		{language.Python, &Python{}},
		{language.Doctest, &Doctest{}},
		{language.CSS, &CSS{}},
		{language.JavaScript, &JavaScript{}},
		{language.SQL, &SQL{}},
		{language.SH, &Shell{}},
		{language.XML, &XML{}},
		{language.HTML, &XML{}},
		{language.Config, &XML{}},
		{language.Text, &AnyText{}},
		{language.Unknown, &AnyText{}},
	}
	for _, tt := range tests {
		t.Run(tt.lang.String(), func(t *testing.T) {
			factory, ok := Lookup(tt.lang)
			require.True(t, ok)
			assert.IsType(t, tt.want, factory("a", "x", nil, nil))
		})
	}
}

func TestLookup_LogHasNoChecker(t *testing.T) {
	_, ok := Lookup(language.Log)
	assert.False(t, ok)
}

func TestUniversal_SkipsLogs(t *testing.T) {
	r, c := newCollector()
	Universal(context.Background(), "var/app.log", strings.Repeat("x", 200)+"\n", language.Log, r, nil)
	assert.Empty(t, c.Findings)
}

func TestUniversal_DispatchesByLanguage(t *testing.T) {
	r, c := newCollector()
	text := strings.Repeat("x", 90) + "\n"

	Universal(context.Background(), "lib/notes.txt", text, language.Text, r, options.Default())

	require.Len(t, c.Findings, 1)
	assert.Equal(t, "Line exceeds 80 characters.", c.Findings[0].Message)
}

func TestShell(t *testing.T) {
	c := runChecker(t, NewShell, "bin/run.sh", "#!/bin/sh\necho ok\n", nil)
	assert.Empty(t, c.Findings)

	c = runChecker(t, NewShell, "bin/run.sh", "if [ -f x ]; then\n  echo hi\n", nil)
	require.Len(t, c.Findings, 1)
	assert.True(t, strings.HasPrefix(c.Findings[0].Message, "Could not compile; "))
}
