// scame checks source files for syntax errors, style problems and leftover
// merge conflicts.
//
// Usage:
//
//	scame [flags] path...
//	scame watch [flags] path...
//	scame version
//
// Every file found under the given paths is classified by name and content
// and handed to the checker for its language. Findings go to stdout in the
// selected format:
//
//	console  grouped by file, with a summary (default)
//	sarif    a SARIF 2.1.0 document
//	json     an array of findings
//	tree     an outline of files and their findings
//
// The exit status is 0 when nothing was found, 1 when findings were
// reported and 2 when the run could not complete.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/scame/internal/config"
	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/internal/version"
	"github.com/dkoosis/scame/internal/watch"
	"github.com/dkoosis/scame/pkg/batch"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/render"
	"github.com/dkoosis/scame/pkg/report"
)

const (
	exitClean    = 0
	exitFindings = 1
	exitFatal    = 2
)

var errNoPaths = errors.New("no paths given")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries the state of one invocation.
type app struct {
	stdout, stderr io.Writer
	flags          config.Flags
	code           int
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, code: -1}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case errors.Is(err, errNoPaths):
		fmt.Fprintln(stderr, "Expected file paths.")
		return exitFindings
	case err != nil && a.code < 0:
		// Flag parsing and argument errors never reach a run.
		fmt.Fprintf(stderr, "scame: %v\n", err)
		return exitFatal
	case err != nil:
		fmt.Fprintf(stderr, "scame: %v\n", err)
	}
	if a.code < 0 {
		return exitClean
	}
	return a.code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scame [flags] path...",
		Short:         "Check source files for errors and style problems",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd, args)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "report errors only")
	pf.IntVarP(&a.flags.MaxLength, "max-length", "m", options.DefaultMaxLineLength, "maximum line length")
	pf.IntVar(&a.flags.MaxComplexity, "max-complexity", -1, "report Python functions above this complexity (-1 disables)")
	pf.BoolVarP(&a.flags.AlignClosing, "align-closing", "a", false, "expect closing brackets to align with the opening line")
	pf.StringVarP(&a.flags.Format, "format", "f", options.FormatConsole, "output format: console, sarif, json, tree")
	pf.StringVar(&a.flags.Theme, "theme", "default", "console theme: default, orca, mono")
	pf.BoolVar(&a.flags.NoColor, "no-color", false, "disable colored output")
	pf.IntVarP(&a.flags.Jobs, "jobs", "j", 1, "number of files checked concurrently")
	pf.StringArrayVarP(&a.flags.Exclude, "exclude", "e", nil, "skip discovered paths matching this expression (repeatable)")
	pf.StringVar(&a.flags.ConfigPath, "config", "", "configuration file (default .scame.yaml or .scame.toml)")
	pf.DurationVar(&a.flags.Timeout, "timeout", options.DefaultToolTimeout, "wait limit for external linters")
	pf.BoolVarP(&a.flags.Debug, "debug", "v", false, "log diagnostics to stderr")

	root.AddCommand(a.watchCmd(), a.versionCmd())
	return root
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [flags] path...",
		Short: "Check files again whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd, args)
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "scame %s (commit %s, built %s)\n",
				version.Version, version.CommitHash, version.BuildDate)
			a.code = exitClean
		},
	}
}

// resolve marks explicitly given flags and builds the run configuration.
func (a *app) resolve(cmd *cobra.Command, args []string) (context.Context, *config.Resolved, error) {
	if len(args) == 0 {
		return nil, nil, errNoPaths
	}
	a.code = exitFatal

	changed := cmd.Flags().Changed
	a.flags.MaxLengthSet = changed("max-length")
	a.flags.MaxComplexitySet = changed("max-complexity")
	a.flags.AlignClosingSet = changed("align-closing")
	a.flags.QuietSet = changed("quiet")
	a.flags.FormatSet = changed("format")
	a.flags.ThemeSet = changed("theme")
	a.flags.NoColorSet = changed("no-color")
	a.flags.JobsSet = changed("jobs")
	a.flags.TimeoutSet = changed("timeout")
	a.flags.DebugSet = changed("debug")

	logger := logging.New(logging.Config{Debug: a.flags.Debug || logging.DebugFromEnv(), Writer: a.stderr})
	ctx := logging.WithLogger(cmd.Context(), logger)

	res, err := config.Resolve(ctx, a.flags)
	if err != nil {
		return nil, nil, err
	}
	if res.Debug != a.flags.Debug {
		ctx = logging.WithLogger(ctx, logging.New(logging.Config{Debug: res.Debug, Writer: a.stderr}))
	}
	res.Options.Scope.Include = args
	return ctx, res, nil
}

func (a *app) check(cmd *cobra.Command, args []string) error {
	ctx, res, err := a.resolve(cmd, args)
	if err != nil {
		return err
	}
	opts := res.Options

	out := newOutput(a.stdout, opts, res.NoColor)
	r := report.New(out.sink, report.WithErrorOnly(opts.ErrorOnly), report.WithDedup(opts.Dedup))

	start := time.Now()
	count, err := batch.CheckSources(ctx, opts, r)
	if err != nil {
		return err
	}
	if err := r.Flush(); err != nil {
		return err
	}
	if err := out.finish(); err != nil {
		return err
	}
	logging.Scoped(ctx, "cli").Debug("check finished",
		"findings", count, "elapsed", time.Since(start).Round(time.Millisecond))

	a.code = exitClean
	if count > 0 {
		a.code = exitFindings
	}
	return nil
}

func (a *app) watch(cmd *cobra.Command, args []string) error {
	ctx, res, err := a.resolve(cmd, args)
	if err != nil {
		return err
	}
	opts := res.Options
	theme := consoleTheme(a.stdout, opts.Theme, res.NoColor)

	cfg := watch.DefaultConfig()
	cfg.AfterRun = func(paths []string, findings int) {
		fmt.Fprintln(a.stdout, theme.Muted.Render(
			fmt.Sprintf("checked %d files, %d problems; watching for changes", len(paths), findings)))
	}
	sink := report.NewConsoleSink(a.stdout, theme, termWidth(a.stdout))
	r := report.New(sink, report.WithErrorOnly(opts.ErrorOnly), report.WithDedup(opts.Dedup))

	w, err := watch.New(opts, r, cfg)
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil {
		return err
	}
	a.code = exitClean
	return nil
}

// output is the sink of a check run and the work left once it is done.
type output struct {
	sink   report.Sink
	finish func() error
}

func newOutput(w io.Writer, opts *options.Options, noColor bool) output {
	switch opts.Format {
	case options.FormatSARIF:
		return output{sink: report.NewSARIFSink(w, "scame", version.Version), finish: nothing}
	case options.FormatJSON:
		return output{sink: report.NewJSONSink(w), finish: nothing}
	case options.FormatTree:
		tree := report.NewTree()
		return output{
			sink:   report.NewTreeSink(tree),
			finish: func() error { return tree.WriteText(w) },
		}
	default:
		theme := consoleTheme(w, opts.Theme, noColor)
		width := termWidth(w)
		tally := report.NewTally()
		var summary render.Renderer = render.NewPlain()
		if isTTY(w) {
			summary = render.NewTerminal(theme, width)
		}
		return output{
			sink:   report.Multi{report.NewConsoleSink(w, theme, width), tally},
			finish: func() error {
				_, err := fmt.Fprint(w, summary.Render(tally.Summary()))
				return err
			},
		}
	}
}

func nothing() error { return nil }

// consoleTheme honors NO_COLOR, --no-color and non-terminal output.
func consoleTheme(w io.Writer, name string, noColor bool) render.Theme {
	if noColor || !isTTY(w) {
		return render.MonoTheme()
	}
	return render.ThemeByName(name)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the width of the terminal behind w, or 0 when w is not
// a terminal.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
