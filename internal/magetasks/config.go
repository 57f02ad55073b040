package magetasks

import (
	"os"
	"path/filepath"
)

var (
	// ModulePath is the Go module path.
	ModulePath = "github.com/dkoosis/scame"

	// MainPackage is the package of the scame command.
	MainPackage = "./cmd/scame"

	// BinPath is the output path of the built binary.
	BinPath = "./bin/scame"

	// ProjectRoot is the root directory of the project.
	ProjectRoot string
)

// Initialize records the project root and creates the bin directory.
// Call this from the Magefile init() function.
func Initialize() error {
	var err error
	ProjectRoot, err = os.Getwd()
	if err != nil {
		return err
	}

	binDir := filepath.Join(ProjectRoot, filepath.Dir(BinPath))
	if err := os.MkdirAll(binDir, 0o750); err != nil {
		return err
	}

	return nil
}
