package trackstore

import "time"

// Failure records the most recent failed attempt for a track. A track
// has at most one failure row; repeat failures bump Attempts and refresh
// ObservedAt.
type Failure struct {
	TrackID    string
	Stage      string
	Reason     string
	Attempts   int
	ObservedAt time.Time
}

// Run summarizes one pipeline invocation.
type Run struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	Total            int
	SkippedCompleted int
	SkippedFailed    int
	Succeeded        int
	Failed           int
}
