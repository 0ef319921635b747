package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveQuiet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch.wav")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RemoveQuiet(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file still present")
	}

	// Second removal is a no-op.
	if err := RemoveQuiet(path); err != nil {
		t.Fatal(err)
	}
	if err := RemoveQuiet(""); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveQuietSurfacesRealErrors(t *testing.T) {
	dir := t.TempDir()
	// Removing a non-empty directory is a genuine error, not a missing file.
	if err := os.WriteFile(filepath.Join(dir, "child"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveQuiet(dir); err == nil {
		t.Fatal("expected error for non-empty directory")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("not a directory")
	}

	// Idempotent on existing directories.
	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}
}
