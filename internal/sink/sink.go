// Package sink appends analysis rows to the results CSV. The file is the
// source of truth for which tracks are complete, so every append is
// flushed and synced before it is acknowledged, and IDs already present
// are never written twice.
package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"groovescan/internal/features"
)

// Sink is a dedup-aware appender for the results CSV. Methods are not
// safe for concurrent use; the pipeline funnels writes through a single
// goroutine.
type Sink struct {
	path    string
	file    *os.File
	writer  *csv.Writer
	present map[string]struct{}
}

// Open loads any existing results file at path and prepares it for
// appends. A missing or empty file gets the header row.
func Open(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}

	present, err := readExistingIDs(path)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}

	sink := &Sink{
		path:    path,
		file:    file,
		writer:  csv.NewWriter(file),
		present: present,
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat results file: %w", err)
	}
	switch {
	case info.Size() == 0:
		if err := sink.writeRecord(features.Columns); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	default:
		// An interrupted writer can leave the last line unterminated;
		// appending onto it would corrupt both rows.
		if err := repairTrailingNewline(path, file); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return sink, nil
}

func repairTrailingNewline(path string, file *os.File) error {
	probe, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reopen results file: %w", err)
	}
	defer probe.Close()

	last := make([]byte, 1)
	if _, err := probe.ReadAt(last, fileSize(probe)-1); err != nil {
		return fmt.Errorf("read results tail: %w", err)
	}
	if last[0] != '\n' {
		if _, err := file.Write([]byte("\n")); err != nil {
			return fmt.Errorf("terminate results tail: %w", err)
		}
	}
	return nil
}

func fileSize(file *os.File) int64 {
	info, err := file.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

func readExistingIDs(path string) (map[string]struct{}, error) {
	present := make(map[string]struct{})

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return present, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open existing results: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read existing results: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) > 0 && record[0] != "" {
			present[record[0]] = struct{}{}
		}
	}
	return present, nil
}

// Contains reports whether a track already has a row.
func (s *Sink) Contains(trackID string) bool {
	_, ok := s.present[trackID]
	return ok
}

// CompletedIDs returns a copy of the set of track IDs with rows.
func (s *Sink) CompletedIDs() map[string]struct{} {
	completed := make(map[string]struct{}, len(s.present))
	for id := range s.present {
		completed[id] = struct{}{}
	}
	return completed
}

// Append writes one result row and makes it durable. Appending an ID
// that already has a row is a silent no-op so crash-retried work never
// duplicates output.
func (s *Sink) Append(row features.Row) error {
	if err := row.Validate(); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if s.Contains(row.ID) {
		return nil
	}

	record := []string{
		row.ID,
		strconv.Itoa(row.Tempo),
		row.Key,
		row.KeyNotation,
		strconv.FormatFloat(row.Energy, 'f', 4, 64),
	}
	if err := s.writeRecord(record); err != nil {
		return fmt.Errorf("append result for %s: %w", row.ID, err)
	}
	s.present[row.ID] = struct{}{}
	return nil
}

func (s *Sink) writeRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return err
	}
	return s.file.Sync()
}

// Close releases the underlying file.
func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
