package magetasks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitialize(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if err := Initialize(); err != nil {
		t.Errorf("Initialize() returned error: %v", err)
	}

	// Verify bin directory was created
	binDir := filepath.Join(tmpDir, "bin")
	if _, err := os.Stat(binDir); os.IsNotExist(err) {
		t.Errorf("Initialize() should create bin directory, but it doesn't exist")
	}

	// Verify ProjectRoot is set (use filepath.EvalSymlinks to handle symlinks)
	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualRoot, _ := filepath.EvalSymlinks(ProjectRoot)
	if actualRoot != expectedRoot {
		t.Errorf("ProjectRoot = %s, want %s", actualRoot, expectedRoot)
	}
}

func TestModulePath(t *testing.T) {
	if ModulePath == "" {
		t.Error("ModulePath should not be empty")
	}
	if ModulePath != "github.com/dkoosis/scame" {
		t.Errorf("ModulePath = %s, want github.com/dkoosis/scame", ModulePath)
	}
}

func TestBinPath(t *testing.T) {
	if BinPath == "" {
		t.Error("BinPath should not be empty")
	}
	if BinPath != "./bin/scame" {
		t.Errorf("BinPath = %s, want ./bin/scame", BinPath)
	}
	if MainPackage != "./cmd/scame" {
		t.Errorf("MainPackage = %s, want ./cmd/scame", MainPackage)
	}
}
