package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"groovescan/internal/features"
)

func row(id string) features.Row {
	return features.Row{ID: id, Tempo: 124, Key: "A minor", KeyNotation: "8A", Energy: 0.41}
}

func TestOpenWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "id,tempo,key,key_notation,energy"); got != 1 {
		t.Fatalf("header count: got %d, want 1", got)
	}
}

func TestAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	sink, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Append(row("abc123")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Append(row("def456")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if !reopened.Contains("abc123") || !reopened.Contains("def456") {
		t.Fatal("rows lost across reopen")
	}
	completed := reopened.CompletedIDs()
	if len(completed) != 2 {
		t.Fatalf("completed: got %d, want 2", len(completed))
	}
}

func TestAppendDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")

	sink, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	for i := 0; i < 3; i++ {
		if err := sink.Append(row("abc123")); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 { // header + one row
		t.Fatalf("lines: got %d, want 2: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[1], "abc123,124,A minor,8A,") {
		t.Fatalf("row malformed: %q", lines[1])
	}
}

func TestAppendRejectsInvalidRow(t *testing.T) {
	sink, err := Open(filepath.Join(t.TempDir(), "dataset.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	bad := row("abc123")
	bad.Energy = 1.5
	if err := sink.Append(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if sink.Contains("abc123") {
		t.Fatal("invalid row must not be marked present")
	}
}

func TestCompletedIDsIsACopy(t *testing.T) {
	sink, err := Open(filepath.Join(t.TempDir(), "dataset.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	if err := sink.Append(row("abc123")); err != nil {
		t.Fatal(err)
	}
	completed := sink.CompletedIDs()
	delete(completed, "abc123")
	if !sink.Contains("abc123") {
		t.Fatal("mutating the returned set leaked into the sink")
	}
}

func TestOpenRepairsMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte("id,tempo,key,key_notation,energy\nabc123,120,C major,8B,0.5000"), 0o644); err != nil {
		t.Fatal(err)
	}

	sink, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	if !sink.Contains("abc123") {
		t.Fatal("existing row not loaded")
	}
	if err := sink.Append(row("def456")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3: %q", len(lines), lines)
	}
}
