package magetasks

import "fmt"

// TestAll runs all tests.
func TestAll() error {
	PrintH2Header("Tests")

	if err := Run("go test", "go", "test", "./..."); err != nil {
		return err
	}

	PrintSuccess("All tests passed")
	return nil
}

// TestCoverage runs tests with coverage.
func TestCoverage() error {
	PrintH2Header("Test Coverage")

	if err := Run("go test -cover", "go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	// The report is informational.
	_ = Run("Coverage report", "go", "tool", "cover", "-func=coverage.out")

	PrintSuccess("Coverage report generated")
	return nil
}

// TestRace runs tests with race detector.
func TestRace() error {
	PrintH2Header("Race Detector")

	if err := Run("go test -race", "go", "test", "-race", "./..."); err != nil {
		return fmt.Errorf("race detector found issues: %w", err)
	}

	PrintSuccess("No race conditions detected")
	return nil
}

// QualityCheck runs the linters, the tests, the build and a self check.
// Lint findings are reported but do not fail the check.
func QualityCheck() error {
	PrintH1Header("scame Quality Checks")

	if err := LintAll(); err != nil {
		PrintWarning("Linting issues found")
	}
	if err := TestAll(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return SelfCheck()
}
