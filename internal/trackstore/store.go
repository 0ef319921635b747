package trackstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"groovescan/internal/config"
)

// Store manages pipeline state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the state database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.StateDB)
}

// OpenPath connects to the state database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordFailure upserts the failure row for a track. A first failure
// starts at one attempt; subsequent failures increment the counter and
// refresh the stage, reason, and timestamp so the retry horizon restarts.
func (s *Store) RecordFailure(ctx context.Context, trackID, stage, reason string) error {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return fmt.Errorf("record failure: empty track id")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO track_failures (track_id, stage, reason, attempts, observed_at)
         VALUES (?, ?, ?, 1, ?)
         ON CONFLICT(track_id) DO UPDATE SET
             stage = excluded.stage,
             reason = excluded.reason,
             attempts = track_failures.attempts + 1,
             observed_at = excluded.observed_at`,
		trackID, stage, reason, now,
	)
	if err != nil {
		return fmt.Errorf("record failure for %s: %w", trackID, err)
	}
	return nil
}

// FailureTimes returns the last observed failure timestamp per track.
func (s *Store) FailureTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id, observed_at FROM track_failures`)
	if err != nil {
		return nil, fmt.Errorf("query failure times: %w", err)
	}
	defer rows.Close()

	times := make(map[string]time.Time)
	for rows.Next() {
		var trackID, observed string
		if err := rows.Scan(&trackID, &observed); err != nil {
			return nil, fmt.Errorf("scan failure time: %w", err)
		}
		ts, parseErr := time.Parse(time.RFC3339Nano, observed)
		if parseErr != nil {
			// Unparseable timestamps count as recent so the track is
			// not hammered because of a corrupt row.
			ts = time.Time{}
		}
		times[trackID] = ts
	}
	return times, rows.Err()
}

// Failures returns all failure records, most recent first.
func (s *Store) Failures(ctx context.Context) ([]Failure, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT track_id, stage, reason, attempts, observed_at
         FROM track_failures ORDER BY observed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var (
			failure  Failure
			observed string
		)
		if err := rows.Scan(&failure.TrackID, &failure.Stage, &failure.Reason, &failure.Attempts, &observed); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, observed); parseErr == nil {
			failure.ObservedAt = ts
		}
		failures = append(failures, failure)
	}
	return failures, rows.Err()
}

// ClearFailures deletes the failure rows for tracks that have since
// succeeded, so a completed track never resurfaces as a stale failure.
func (s *Store) ClearFailures(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, trackID := range trackIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM track_failures WHERE track_id = ?`, trackID); err != nil {
			return fmt.Errorf("clear failure for %s: %w", trackID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// RecordRun persists the summary of a finished pipeline invocation.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("record run: empty run id")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, started_at, finished_at,
            total, skipped_completed, skipped_failed, succeeded, failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Total,
		run.SkippedCompleted,
		run.SkippedFailed,
		run.Succeeded,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit run summaries, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, started_at, finished_at,
                total, skipped_completed, skipped_failed, succeeded, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(
			&run.RunID, &started, &finished,
			&run.Total, &run.SkippedCompleted, &run.SkippedFailed, &run.Succeeded, &run.Failed,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, started); parseErr == nil {
			run.StartedAt = ts
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, finished); parseErr == nil {
			run.FinishedAt = ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
