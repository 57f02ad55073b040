package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/scame/pkg/options"
)

// isolate runs the test in an empty directory with a clean environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	for _, key := range []string{"SCAME_MAX_LENGTH", "SCAME_QUIET", "SCAME_JOBS", "SCAME_DEBUG", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	return dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	f, err := Load("")

	require.NoError(t, err)
	assert.Empty(t, f.Path)
	assert.Equal(t, options.Default(), f.Options)
	assert.False(t, f.Has("max_line_length"))
}

func TestLoad_LocalYAML(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, YAMLFileName), "max_line_length: 100\nscope:\n  exclude: ['vendor/']\ntool_timeout: 5s\n")

	f, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, YAMLFileName, f.Path)
	assert.Equal(t, 100, f.Options.MaxLineLength)
	assert.Equal(t, []string{"vendor/"}, f.Options.Scope.Exclude)
	assert.Equal(t, 5*time.Second, f.Options.ToolTimeout)
	assert.True(t, f.Options.HangClosing, "unset keys keep their defaults")
	assert.True(t, f.Has("max_line_length"))
	assert.False(t, f.Has("jobs"))
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, TOMLFileName), "max_line_length = 120\njobs = 4\n\n[javascript]\nlinters = ['jshint-compact']\n")

	f, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, TOMLFileName, f.Path)
	assert.Equal(t, 120, f.Options.MaxLineLength)
	assert.Equal(t, 4, f.Options.Jobs)
	assert.Equal(t, []string{"jshint-compact"}, f.Options.JavaScript.Linters)
	assert.True(t, f.Has("javascript"))
}

func TestFindPath_UserConfigDir(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "xdg", "scame", YAMLFileName)
	write(t, p, "jobs: 2\n")

	assert.Equal(t, p, FindPath())
}

func TestFindPath_LocalWins(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "xdg", "scame", YAMLFileName), "jobs: 2\n")
	write(t, filepath.Join(dir, TOMLFileName), "jobs = 3\n")

	assert.Equal(t, TOMLFileName, FindPath())
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	write(t, bad, "max_line_length: [\n")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestResolve_Precedence(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, YAMLFileName), "max_line_length: 100\njobs: 2\nmax_complexity: 12\n")
	t.Setenv("SCAME_MAX_LENGTH", "90")
	t.Setenv("SCAME_JOBS", "3")

	res, err := Resolve(context.Background(), Flags{MaxLength: 70, MaxLengthSet: true})

	require.NoError(t, err)
	assert.Equal(t, 70, res.Options.MaxLineLength)
	assert.Equal(t, 3, res.Options.Jobs)
	assert.Equal(t, 12, res.Options.MaxComplexity)
	assert.Equal(t, SourceCLI, res.Sources["max_line_length"])
	assert.Equal(t, SourceEnv, res.Sources["jobs"])
	assert.Equal(t, SourceFile, res.Sources["max_complexity"])
	assert.Equal(t, SourceDefault, res.Sources["format"])
}

func TestResolve_Flags(t *testing.T) {
	isolate(t)

	res, err := Resolve(context.Background(), Flags{
		AlignClosing: true, AlignClosingSet: true,
		Quiet: true, QuietSet: true,
		Format: options.FormatSARIF, FormatSet: true,
		NoColor: true, NoColorSet: true,
		Timeout: time.Second, TimeoutSet: true,
		Exclude: []string{"build/"},
	})

	require.NoError(t, err)
	assert.False(t, res.Options.HangClosing)
	assert.True(t, res.Options.ErrorOnly)
	assert.Equal(t, options.FormatSARIF, res.Options.Format)
	assert.True(t, res.NoColor)
	assert.Equal(t, time.Second, res.Options.ToolTimeout)
	assert.Equal(t, []string{"build/"}, res.Options.Scope.Exclude)
}

func TestResolve_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("SCAME_QUIET", "true")
	t.Setenv("SCAME_DEBUG", "1")

	res, err := Resolve(context.Background(), Flags{})

	require.NoError(t, err)
	assert.True(t, res.NoColor)
	assert.True(t, res.Options.ErrorOnly)
	assert.True(t, res.Debug)
	assert.Equal(t, SourceEnv, res.Sources["debug"])
}

func TestResolve_Validation(t *testing.T) {
	isolate(t)

	_, err := Resolve(context.Background(), Flags{Jobs: 0, JobsSet: true})
	assert.ErrorContains(t, err, "jobs must be at least 1")

	_, err = Resolve(context.Background(), Flags{Format: "xml", FormatSet: true})
	assert.ErrorContains(t, err, "invalid format value")

	_, err = Resolve(context.Background(), Flags{MaxLength: -1, MaxLengthSet: true})
	assert.ErrorContains(t, err, "max_line_length must be positive")
}
