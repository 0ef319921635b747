package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// RemoveQuiet deletes path, treating a missing file as success. Used for
// scratch cleanup where the artifact may never have been produced.
func RemoveQuiet(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", path, err)
	}
	return nil
}
