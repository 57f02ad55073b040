package magetasks

import (
	"errors"
	"fmt"
)

// golangciDisabled are linters that disagree with the code base's style.
const golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign,tenv"

// linter is one lint step. Optional linters are skipped with a warning
// when not installed.
type linter struct {
	name     string
	install  string
	run      func() error
	optional bool
}

func linters() []linter {
	return []linter{
		{name: "gofmt", run: LintFormat},
		{name: "go vet", run: LintVet},
		{name: "staticcheck", install: "honnef.co/go/tools/cmd/staticcheck@latest", run: LintStaticcheck, optional: true},
		{name: "golangci-lint", install: "github.com/golangci/golangci-lint/cmd/golangci-lint@latest", run: LintGolangci, optional: true},
	}
}

// LintAll runs every linter and joins their failures.
func LintAll() error {
	var errs []error
	for _, l := range linters() {
		err := l.run()
		switch {
		case err == nil:
		case l.optional && IsCommandNotFound(err):
			PrintWarning(fmt.Sprintf("%s not found (install: go install %s)", l.name, l.install))
		default:
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	PrintSuccess("All linters passed")
	return nil
}

// LintFormat lists files whose formatting differs from gofmt -s.
func LintFormat() error {
	return Run("gofmt", "gofmt", "-l", "-s", "cmd", "internal", "pkg")
}

// LintVet runs go vet.
func LintVet() error {
	return Run("go vet", "go", "vet", "./...")
}

// LintStaticcheck runs staticcheck.
func LintStaticcheck() error {
	return Run("staticcheck", "staticcheck", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	return Run("golangci-lint", "golangci-lint", "run", golangciDisabled, "--timeout=5m", "./...")
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return Run("golangci-lint --fix", "golangci-lint", "run", "--fix", golangciDisabled, "--timeout=5m", "./...")
}
