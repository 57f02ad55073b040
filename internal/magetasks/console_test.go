package magetasks

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureStdout returns what fn prints to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestPrinters(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
		want string
	}{
		{"h1", func() { PrintH1Header("Test Title") }, "Test Title"},
		{"h2", func() { PrintH2Header("Test Section") }, "=== Test Section ==="},
		{"step", func() { PrintStep("Go Vet") }, "Go Vet"},
		{"success", func() { PrintSuccess("Operation completed") }, "Operation completed"},
		{"warning", func() { PrintWarning("Warning message") }, "Warning message"},
		{"error", func() { PrintError("Error message") }, "Error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureStdout(t, tt.fn)
			if !strings.Contains(output, tt.want) {
				t.Errorf("output should contain %q, got: %s", tt.want, output)
			}
		})
	}
}

func TestPrintH1Header_Rules(t *testing.T) {
	output := captureStdout(t, func() { PrintH1Header("scame") })
	if strings.Count(output, strings.Repeat("=", 80)) != 2 {
		t.Errorf("PrintH1Header should print two rules, got: %s", output)
	}
}
