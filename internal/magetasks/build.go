package magetasks

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BuildAll builds the scame binary with version metadata.
func BuildAll() error {
	PrintH2Header("Build")

	ldflags := Ldflags(getGitVersion(), getGitCommit(), time.Now().UTC().Format(time.RFC3339))
	if err := Run("Building scame", "go", "build", "-ldflags", ldflags, "-o", BinPath, MainPackage); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Built: %s", BinPath))
	return nil
}

// Ldflags returns the linker flags that stamp internal/version.
func Ldflags(version, commit, date string) string {
	pkg := ModulePath + "/internal/version"
	return fmt.Sprintf("-s -w -X '%s.Version=%s' -X '%s.CommitHash=%s' -X '%s.BuildDate=%s'",
		pkg, version, pkg, commit, pkg, date)
}

// Clean removes build artifacts.
func Clean() error {
	PrintH2Header("Clean")

	if err := os.RemoveAll("./bin"); err != nil {
		return err
	}
	_ = os.Remove("coverage.out")
	_ = exec.Command("go", "clean", "-cache").Run()

	PrintSuccess("Cleaned build artifacts")
	return nil
}

// SelfCheck runs scame over the project sources.
func SelfCheck() error {
	PrintH2Header("Self Check")

	return Run("scame", "go", "run", MainPackage, "--jobs", "4",
		"--exclude", "_examples", "--exclude", "bin", ".")
}

func getGitVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty", "--match=v*").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(out))
}

func getGitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
