package batch

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func longLine() string {
	return strings.Repeat("x", 90) + "\n"
}

func scopeOptions(include ...string) *options.Options {
	opts := options.Default()
	opts.Scope.Include = include
	return opts
}

func TestCheckSources_CountsFindings(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.py":  "x = 1\n",
		"b.txt": longLine(),
	})
	c := report.NewCollector()
	r := report.New(c)

	count, err := CheckSources(context.Background(), scopeOptions(root), r)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, c.Findings, 1)
	assert.Equal(t, "b.txt", c.Findings[0].FileName)
	assert.Equal(t, "Line exceeds 80 characters.", c.Findings[0].Message)
}

func TestCheckSources_SkipsFilesThatAreNotEditable(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"unknown.bin": longLine(),
		"logo.png":    longLine(),
	})
	r := report.New(report.NewCollector())

	count, err := CheckSources(context.Background(), scopeOptions(root), r)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCheckSources_Exclude(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"keep/a.txt":         longLine(),
		"vendor/b.txt":       longLine(),
		"vendor/c.txt":       longLine(),
		"other/vendor/d.txt": longLine(),
	})
	opts := scopeOptions(root)
	opts.Scope.Exclude = []string{regexp.QuoteMeta(filepath.Join(root, "vendor"))}
	c := report.NewCollector()

	count, err := CheckSources(context.Background(), opts, report.New(c))

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "a.txt", c.Findings[0].FileName)
	assert.Equal(t, "d.txt", c.Findings[1].FileName)
}

func TestCheckSources_ExcludeIsAnchored(t *testing.T) {
	root := writeFiles(t, map[string]string{"lib/a.txt": longLine()})
	opts := scopeOptions(root)
	opts.Scope.Exclude = []string{"lib"}

	count, err := CheckSources(context.Background(), opts, report.New(report.NewCollector()))

	require.NoError(t, err)
	assert.Equal(t, 1, count, "an unanchored match on the path tail must not exclude")
}

func TestCheckSources_MissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.py")

	_, err := CheckSources(context.Background(), scopeOptions(missing), report.New(report.NewCollector()))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "nope.py")
}

func TestCheckSources_InvalidExclude(t *testing.T) {
	opts := scopeOptions(t.TempDir())
	opts.Scope.Exclude = []string{"("}

	_, err := CheckSources(context.Background(), opts, report.New(report.NewCollector()))
	assert.ErrorContains(t, err, "invalid exclude expression")
}

func TestCheckSources_ResetsCount(t *testing.T) {
	root := writeFiles(t, map[string]string{"a.txt": longLine()})
	r := report.New(report.NewCollector())
	opts := scopeOptions(root)

	_, err := CheckSources(context.Background(), opts, r)
	require.NoError(t, err)
	count, err := CheckSources(context.Background(), opts, r)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCheckSources_ParallelKeepsDiscoveryOrder(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name+".txt"] = longLine() + "ok\n" + "trailing \n"
	}
	root := writeFiles(t, files)

	serial := report.NewCollector()
	_, err := CheckSources(context.Background(), scopeOptions(root), report.New(serial))
	require.NoError(t, err)

	opts := scopeOptions(root)
	opts.Jobs = 4
	parallel := report.NewCollector()
	count, err := CheckSources(context.Background(), opts, report.New(parallel))

	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.Equal(t, serial.Findings, parallel.Findings)
}

func TestCheckSources_ParallelCountMatchesSerial(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.py":  "import os\n\nprint(os.sep)\n",
		"b.txt": longLine(),
	})

	for _, jobs := range []int{1, 2, 8} {
		opts := scopeOptions(root)
		opts.Jobs = jobs
		r := report.New(report.NewCollector())

		count, err := CheckSources(context.Background(), opts, r)

		require.NoError(t, err)
		assert.Equal(t, 1, count, "jobs=%d", jobs)
		assert.Equal(t, r.CallCount(), count, "jobs=%d", jobs)
	}
}

func TestCheckSources_ParallelHonoursErrorOnly(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a.txt": longLine(),
		"b.txt": "<<<<<<< HEAD\n",
	})
	opts := scopeOptions(root)
	opts.Jobs = 2
	c := report.NewCollector()

	count, err := CheckSources(context.Background(), opts, report.New(c, report.WithErrorOnly(true)))

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "File has conflicts.", c.Findings[0].Message)
}

func TestDiscover_FilesAreTakenAsGiven(t *testing.T) {
	root := writeFiles(t, map[string]string{"sub/a.txt": "", "b.txt": ""})

	files, err := Discover(options.Scope{
		Include: []string{filepath.Join(root, "b.txt"), root + string(filepath.Separator) + "sub" + string(filepath.Separator)},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.txt"), filepath.Join(root, "sub", "a.txt")}, files)
}
