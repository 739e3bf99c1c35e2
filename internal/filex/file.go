package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory holding path, relative paths being
// resolved against the working directory, and returns the absolute path.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}
