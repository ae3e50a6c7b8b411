package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/flow/pkg/adapters/fs"
)

// ErrRootNotFound is returned by FindRoot when no enclosing graph exists.
var ErrRootNotFound = fmt.Errorf("graph root not found")

// FindRoot looks upwards from startDir for a directory holding a graph
// (a .flow directory) and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, fs.SystemDir)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w from %s", ErrRootNotFound, abs)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
