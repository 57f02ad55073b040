package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/options"
)

// Source names where a resolved setting came from.
type Source string

const (
	SourceCLI     Source = "cli"
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

// Flags holds the command-line values. The *Set fields record whether the
// user gave the flag explicitly.
type Flags struct {
	ConfigPath string

	MaxLength     int
	MaxComplexity int
	AlignClosing  bool
	Quiet         bool
	Format        string
	Theme         string
	NoColor       bool
	Jobs          int
	Exclude       []string
	Timeout       time.Duration
	Debug         bool

	MaxLengthSet     bool
	MaxComplexitySet bool
	AlignClosingSet  bool
	QuietSet         bool
	FormatSet        bool
	ThemeSet         bool
	NoColorSet       bool
	JobsSet          bool
	TimeoutSet       bool
	DebugSet         bool
}

// Resolved is the final configuration of a run.
type Resolved struct {
	Options *options.Options

	NoColor bool
	Debug   bool

	// ConfigPath is the file that was loaded, if any.
	ConfigPath string

	// Sources maps setting names to where their value came from.
	Sources map[string]Source
}

// Resolve loads the configuration file and applies the environment and
// flags on top of it.
func Resolve(ctx context.Context, flags Flags) (*Resolved, error) {
	file, err := Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	opts := file.Options
	res := &Resolved{
		Options:    opts,
		ConfigPath: file.Path,
		Sources:    make(map[string]Source),
	}
	from := func(key string) Source {
		if file.Has(key) {
			return SourceFile
		}
		return SourceDefault
	}
	for _, key := range []string{"max_line_length", "max_complexity", "hang_closing", "error_only",
		"format", "theme", "jobs", "tool_timeout", "scope"} {
		res.Sources[key] = from(key)
	}
	res.Sources["no_color"] = SourceDefault
	res.Sources["debug"] = SourceDefault

	// Environment.
	if v, ok := getEnvInt("SCAME_MAX_LENGTH"); ok {
		opts.MaxLineLength = v
		res.Sources["max_line_length"] = SourceEnv
	}
	if v := getEnvBool("SCAME_QUIET"); v != nil {
		opts.ErrorOnly = *v
		res.Sources["error_only"] = SourceEnv
	}
	if v, ok := getEnvInt("SCAME_JOBS"); ok {
		opts.Jobs = v
		res.Sources["jobs"] = SourceEnv
	}
	if os.Getenv("NO_COLOR") != "" {
		res.NoColor = true
		res.Sources["no_color"] = SourceEnv
	}
	if logging.DebugFromEnv() {
		res.Debug = true
		res.Sources["debug"] = SourceEnv
	}

	// Flags.
	if flags.MaxLengthSet {
		opts.MaxLineLength = flags.MaxLength
		res.Sources["max_line_length"] = SourceCLI
	}
	if flags.MaxComplexitySet {
		opts.MaxComplexity = flags.MaxComplexity
		res.Sources["max_complexity"] = SourceCLI
	}
	if flags.AlignClosingSet {
		opts.HangClosing = !flags.AlignClosing
		res.Sources["hang_closing"] = SourceCLI
	}
	if flags.QuietSet {
		opts.ErrorOnly = flags.Quiet
		res.Sources["error_only"] = SourceCLI
	}
	if flags.FormatSet {
		opts.Format = flags.Format
		res.Sources["format"] = SourceCLI
	}
	if flags.ThemeSet {
		opts.Theme = flags.Theme
		res.Sources["theme"] = SourceCLI
	}
	if flags.NoColorSet {
		res.NoColor = flags.NoColor
		res.Sources["no_color"] = SourceCLI
	}
	if flags.JobsSet {
		opts.Jobs = flags.Jobs
		res.Sources["jobs"] = SourceCLI
	}
	if flags.TimeoutSet {
		opts.ToolTimeout = flags.Timeout
		res.Sources["tool_timeout"] = SourceCLI
	}
	if flags.DebugSet {
		res.Debug = flags.Debug
		res.Sources["debug"] = SourceCLI
	}
	if len(flags.Exclude) > 0 {
		opts.Scope.Exclude = append(opts.Scope.Exclude, flags.Exclude...)
		res.Sources["scope"] = SourceCLI
	}

	if err := validate(opts); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logging.Scoped(ctx, "config").Debug("resolved configuration",
		"file", res.ConfigPath,
		"max_line_length", opts.MaxLineLength,
		"jobs", opts.Jobs,
		"format", opts.Format)
	return res, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func getEnvInt(key string) (int, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

var validFormats = map[string]bool{
	options.FormatConsole: true,
	options.FormatSARIF:   true,
	options.FormatJSON:    true,
	options.FormatTree:    true,
}

// validate rejects settings no run can use.
func validate(opts *options.Options) error {
	if opts.MaxLineLength <= 0 {
		return fmt.Errorf("max_line_length must be positive, got: %d", opts.MaxLineLength)
	}
	if opts.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got: %d", opts.Jobs)
	}
	if opts.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout must be positive, got: %s", opts.ToolTimeout)
	}
	if !validFormats[opts.Format] {
		return fmt.Errorf("invalid format value: %s (must be: console, sarif, json, tree)", opts.Format)
	}
	return nil
}
