// Package tempdir provides scoped temporary directories
package tempdir

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Scope creates a temporary directory, calls fn with its path
// and removes the directory and everything in it once fn returns,
// whether or not fn succeeded or panicked. An error from fn takes
// precedence over an error removing the directory.
func Scope(pattern string, logger *zap.Logger, fn func(dir string) error) (err error) {
	if logger == nil {
		logger = zap.L()
	}

	dir, err := os.MkdirTemp("", pattern)

	if err != nil {
		return fmt.Errorf("could not create temporary directory: %w", err)
	}

	logger.Debug("created temporary directory", zap.String("path", dir))

	defer func() {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			logger.Warn("could not remove temporary directory", zap.String("path", dir), zap.Error(removeErr))

			if err == nil {
				err = fmt.Errorf("could not remove temporary directory %s: %w", dir, removeErr)
			}

			return
		}

		logger.Debug("removed temporary directory", zap.String("path", dir))
	}()

	return fn(dir)
}

// Sub returns the path of a child of dir named name. It
// rejects names that would escape dir.
func Sub(dir string, name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid subdirectory name %q", name)
	}

	return filepath.Join(dir, name), nil
}
