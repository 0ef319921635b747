package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCandidates(t *testing.T) {
	path := writeDataset(t, `[
		{"tracklist": [{"id": "aaa"}, {"id": "bbb"}]},
		{"tracklist": [{"id": "bbb"}, {"id": ""}, {"id": "ccc"}]}
	]`)

	ids, err := LoadCandidates(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"aaa", "bbb", "ccc"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids: got %v, want %v", ids, want)
	}
}

func TestLoadCandidatesEmptyDataset(t *testing.T) {
	path := writeDataset(t, `[]`)

	ids, err := LoadCandidates(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no candidates, got %v", ids)
	}
}

func TestLoadCandidatesMalformedJSON(t *testing.T) {
	path := writeDataset(t, `{"not": "a list"`)

	if _, err := LoadCandidates(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadCandidatesMissingFile(t *testing.T) {
	if _, err := LoadCandidates(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}
