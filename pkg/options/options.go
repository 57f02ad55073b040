// Package options defines the configuration bag shared by the checkers and
// the batch driver. Options are read-only while a run is in progress.
package options

import "time"

// DefaultMaxLineLength is the line length limit used when none is configured.
const DefaultMaxLineLength = 80

// DefaultToolTimeout bounds the wait on external analyzer subprocesses.
const DefaultToolTimeout = 30 * time.Second

// Output formats understood by the CLI.
const (
	FormatConsole = "console"
	FormatSARIF   = "sarif"
	FormatJSON    = "json"
	FormatTree    = "tree"
)

// Scope selects the files of a batch run.
type Scope struct {
	// Include is the ordered list of files and directories to check.
	Include []string `yaml:"include" toml:"include"`

	// Exclude holds regular expressions matched against paths discovered
	// while walking an included directory.
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// JavaScript configures the external JavaScript linter.
type JavaScript struct {
	// Linters lists candidate executables; the first one found on PATH wins.
	// None are configured by default: a bare interpreter such as gjs would
	// run the script instead of linting it.
	Linters []string `yaml:"linters" toml:"linters"`

	// Args are passed to the linter before the file path.
	Args []string `yaml:"args" toml:"args"`
}

// Options is the configuration of a check run.
type Options struct {
	MaxLineLength int  `yaml:"max_line_length" toml:"max_line_length"`
	HangClosing   bool `yaml:"hang_closing" toml:"hang_closing"`

	// MaxComplexity enables the Python complexity check above this value.
	// Negative values disable it.
	MaxComplexity int `yaml:"max_complexity" toml:"max_complexity"`

	Scope      Scope      `yaml:"scope" toml:"scope"`
	JavaScript JavaScript `yaml:"javascript" toml:"javascript"`

	ToolTimeout time.Duration `yaml:"tool_timeout" toml:"tool_timeout"`

	// Jobs is the number of files checked concurrently.
	Jobs int `yaml:"jobs" toml:"jobs"`

	// ErrorOnly drops every finding that is not an error.
	ErrorOnly bool `yaml:"error_only" toml:"error_only"`

	// Dedup suppresses repeated identical findings within one file.
	Dedup bool `yaml:"dedup" toml:"dedup"`

	Format string `yaml:"format" toml:"format"`
	Theme  string `yaml:"theme" toml:"theme"`
}

// Default returns the options used when nothing is configured.
func Default() *Options {
	return &Options{
		MaxLineLength: DefaultMaxLineLength,
		HangClosing:   true,
		MaxComplexity: -1,
		ToolTimeout: DefaultToolTimeout,
		Jobs:        1,
		Dedup:       true,
		Format:      FormatConsole,
		Theme:       "default",
	}
}

// LineLength returns the configured limit, falling back to the default
// when o is nil or the value is not positive.
func (o *Options) LineLength() int {
	if o == nil || o.MaxLineLength <= 0 {
		return DefaultMaxLineLength
	}
	return o.MaxLineLength
}

// Timeout returns the subprocess timeout, falling back to the default.
func (o *Options) Timeout() time.Duration {
	if o == nil || o.ToolTimeout <= 0 {
		return DefaultToolTimeout
	}
	return o.ToolTimeout
}
