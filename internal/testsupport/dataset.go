package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteDataset writes a candidate dataset file containing one mix whose
// tracklist holds the given IDs.
func WriteDataset(t testing.TB, path string, ids ...string) {
	t.Helper()

	type track struct {
		ID string `json:"id"`
	}
	type mix struct {
		Tracklist []track `json:"tracklist"`
	}

	tracks := make([]track, 0, len(ids))
	for _, id := range ids {
		tracks = append(tracks, track{ID: id})
	}
	data, err := json.Marshal([]mix{{Tracklist: tracks}})
	if err != nil {
		t.Fatalf("marshal dataset: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write dataset %s: %v", path, err)
	}
}
