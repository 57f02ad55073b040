// Package batch runs the checkers over the files selected by a Scope.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/checker"
	"github.com/dkoosis/scame/pkg/language"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// CheckSources checks every file of opts.Scope and returns the number of
// findings accepted by r. Included directories are walked in lexical
// order; paths found while walking are dropped when an exclude expression
// matches at their start. Files that are not editable are skipped.
//
// With more than one job, files are checked concurrently and their
// findings replayed into r in discovery order.
func CheckSources(ctx context.Context, opts *options.Options, r *report.Reporter) (int, error) {
	if opts == nil {
		opts = options.Default()
	}
	r.Reset()

	files, err := Discover(opts.Scope)
	if err != nil {
		return r.CallCount(), err
	}

	if opts.Jobs <= 1 || len(files) <= 1 {
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return r.CallCount(), err
			}
			if err := CheckFile(ctx, path, r, opts); err != nil {
				return r.CallCount(), err
			}
		}
		return r.CallCount(), nil
	}
	err = checkParallel(ctx, files, r, opts)
	return r.CallCount(), err
}

// checkParallel checks files with opts.Jobs workers. Each file reports into
// a private buffer so its findings stay together.
func checkParallel(ctx context.Context, files []string, r *report.Reporter, opts *options.Options) error {
	buffers := make([]report.Buffer, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := report.New(&buffers[i], report.WithErrorOnly(r.ErrorOnly()))
			return CheckFile(gctx, path, local, opts)
		})
	}
	err := g.Wait()

	// Findings of the files checked before a failure are still delivered.
	for i := range buffers {
		buffers[i].ReplayTo(r)
	}
	return err
}

// CheckFile reads path and checks it with the checker of its language.
// Files that are not editable are skipped.
func CheckFile(ctx context.Context, path string, r *report.Reporter, opts *options.Options) error {
	log := logging.Scoped(ctx, "batch")
	if !language.IsEditable(path) {
		log.Debug("skipping", "file", path)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	CheckText(ctx, path, string(data), r, opts)
	return nil
}

// CheckText checks text as the content of path.
func CheckText(ctx context.Context, path, text string, r *report.Reporter, opts *options.Options) {
	lang := language.Classify(path)
	logging.Scoped(ctx, "batch").Debug("checking", "file", path, "language", lang)
	checker.Universal(ctx, path, text, lang, r, opts)
}

// Discover expands scope into the ordered list of files to check.
func Discover(scope options.Scope) ([]string, error) {
	excludes, err := CompileExcludes(scope.Exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, source := range scope.Include {
		path := filepath.Clean(source)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || excludes.Match(p) {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return files, nil
}

// Excludes is a compiled list of exclude expressions.
type Excludes []*regexp.Regexp

// CompileExcludes compiles exprs, anchoring each at the start of the path.
func CompileExcludes(exprs []string) (Excludes, error) {
	out := make(Excludes, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(`^(?:` + expr + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude expression %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Match reports whether any expression matches path.
func (e Excludes) Match(path string) bool {
	for _, re := range e {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
