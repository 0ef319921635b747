package workset

import (
	"math/rand"
	"time"
)

// Input carries the immutable snapshots the resolver works from.
type Input struct {
	// Candidates is the full candidate ID list, in dataset order.
	Candidates []string
	// Completed holds IDs already present in the output dataset.
	Completed map[string]struct{}
	// FailureTimes maps failed IDs to their most recent observation time.
	FailureTimes map[string]time.Time
	// RetryHorizon is the minimum age a failure must reach before retry.
	RetryHorizon time.Duration
	// Now anchors the horizon check; zero means time.Now().
	Now time.Time
}

// Queue is the resolved work set plus skip accounting for the run summary.
type Queue struct {
	IDs              []string
	Total            int
	SkippedCompleted int
	SkippedFailed    int
}

// Empty reports whether there is no work to do.
func (q Queue) Empty() bool {
	return len(q.IDs) == 0
}

// Resolve computes candidates minus completed minus recently-failed. A
// failure record for a completed ID is ignored: completion supersedes it.
// The result is shuffled so successive runs spread load across hosts
// instead of hammering the same ones in dataset order.
func Resolve(in Input) Queue {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.Add(-in.RetryHorizon)

	queue := Queue{Total: len(in.Candidates)}
	for _, id := range in.Candidates {
		if _, done := in.Completed[id]; done {
			queue.SkippedCompleted++
			continue
		}
		if observed, failed := in.FailureTimes[id]; failed {
			// Zero observation times count as recent: a record whose
			// timestamp could not be read should not be retried blindly.
			if observed.IsZero() || observed.After(cutoff) {
				queue.SkippedFailed++
				continue
			}
		}
		queue.IDs = append(queue.IDs, id)
	}

	rand.Shuffle(len(queue.IDs), func(i, j int) {
		queue.IDs[i], queue.IDs[j] = queue.IDs[j], queue.IDs[i]
	})
	return queue
}
