package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"groovescan/internal/analysis"
	"groovescan/internal/config"
	"groovescan/internal/dataset"
	"groovescan/internal/features"
	"groovescan/internal/fileutil"
	"groovescan/internal/logging"
	"groovescan/internal/services/ytdlp"
	"groovescan/internal/workset"
)

// Stage names recorded alongside failures.
const (
	StageAcquire = "acquire"
	StageExtract = "extract"
	StageAnalyze = "analyze"
)

// Fixed extraction pool width. Cutting is a short ffmpeg invocation, so a
// small pool keeps up with both neighbouring stages.
const extractWorkers = 2

// Fetcher acquires raw audio for a candidate ID.
type Fetcher interface {
	Fetch(ctx context.Context, id, dest string) error
}

// Cutter produces the analysis segment from raw audio.
type Cutter interface {
	Cut(ctx context.Context, src, dst string, length time.Duration) error
}

// AnalyzeFunc computes features for a cut segment.
type AnalyzeFunc func(path string) (analysis.Result, error)

// ResultSink receives completed feature rows.
type ResultSink interface {
	Append(row features.Row) error
	CompletedIDs() map[string]struct{}
}

// StateStore persists failures and run summaries between runs.
type StateStore interface {
	RecordFailure(ctx context.Context, trackID, stage, reason string) error
	FailureTimes(ctx context.Context) (map[string]time.Time, error)
	ClearFailures(ctx context.Context, trackIDs []string) error
}

// Summary reports what one run did.
type Summary struct {
	RunID            string
	Total            int
	SkippedCompleted int
	SkippedFailed    int
	Attempted        int
	Succeeded        int
	Failed           int
	Elapsed          time.Duration
}

// Pipeline wires the stages together for one or more runs.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	fetcher Fetcher
	cutter  Cutter
	analyze AnalyzeFunc
	sink    ResultSink
	store   StateStore
}

// New constructs a pipeline from its collaborators.
func New(cfg *config.Config, logger *slog.Logger, fetcher Fetcher, cutter Cutter, analyze AnalyzeFunc, sink ResultSink, store StateStore) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config required")
	}
	if fetcher == nil || cutter == nil || analyze == nil || sink == nil || store == nil {
		return nil, errors.New("pipeline: all collaborators required")
	}
	return &Pipeline{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		fetcher: fetcher,
		cutter:  cutter,
		analyze: analyze,
		sink:    sink,
		store:   store,
	}, nil
}

type job struct {
	id   string
	path string
}

type outcome struct {
	id     string
	stage  string
	row    features.Row
	reason string
	err    error
}

// Run executes one full pass over the outstanding work set.
func (p *Pipeline) Run(ctx context.Context, runID string) (Summary, error) {
	started := time.Now()
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))

	candidates, err := dataset.LoadCandidates(p.cfg.Paths.DatasetFile)
	if err != nil {
		return Summary{RunID: runID}, err
	}

	failureTimes, err := p.store.FailureTimes(ctx)
	if err != nil {
		return Summary{RunID: runID}, err
	}

	queue := workset.Resolve(workset.Input{
		Candidates:   candidates,
		Completed:    p.sink.CompletedIDs(),
		FailureTimes: failureTimes,
		RetryHorizon: p.cfg.RetryHorizon(),
	})

	summary := Summary{
		RunID:            runID,
		Total:            queue.Total,
		SkippedCompleted: queue.SkippedCompleted,
		SkippedFailed:    queue.SkippedFailed,
		Attempted:        len(queue.IDs),
	}

	logger.Info("work set resolved",
		logging.Int("total", queue.Total),
		logging.Int("skipped_completed", queue.SkippedCompleted),
		logging.Int("skipped_failed", queue.SkippedFailed),
		logging.Int("outstanding", len(queue.IDs)),
	)

	if queue.Empty() {
		summary.Elapsed = time.Since(started)
		return summary, nil
	}

	scratch := filepath.Join(p.cfg.Paths.StagingDir, runID)
	if err := fileutil.EnsureDir(scratch); err != nil {
		return summary, err
	}
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	acquireCh := make(chan string)
	extractCh := make(chan job, extractWorkers)
	analyzeCh := make(chan job, p.cfg.AnalysisWorkerCount())
	outcomeCh := make(chan outcome, len(queue.IDs))

	// Acquisition pool.
	var acquireWG sync.WaitGroup
	for i := 0; i < p.cfg.Pipeline.DownloadWorkers; i++ {
		acquireWG.Add(1)
		go func() {
			defer acquireWG.Done()
			p.acquireWorker(runCtx, logger, scratch, acquireCh, extractCh, outcomeCh)
		}()
	}
	go func() {
		acquireWG.Wait()
		close(extractCh)
	}()

	// Extraction pool.
	var extractWG sync.WaitGroup
	for i := 0; i < extractWorkers; i++ {
		extractWG.Add(1)
		go func() {
			defer extractWG.Done()
			p.extractWorker(runCtx, scratch, extractCh, analyzeCh, outcomeCh)
		}()
	}
	go func() {
		extractWG.Wait()
		close(analyzeCh)
	}()

	// Analysis pool.
	var analyzeWG sync.WaitGroup
	for i := 0; i < p.cfg.AnalysisWorkerCount(); i++ {
		analyzeWG.Add(1)
		go func() {
			defer analyzeWG.Done()
			p.analyzeWorker(analyzeCh, outcomeCh)
		}()
	}
	go func() {
		analyzeWG.Wait()
		close(outcomeCh)
	}()

	// Feed the queue. Closing acquireCh unwinds the whole chain.
	go func() {
		defer close(acquireCh)
		for _, id := range queue.IDs {
			select {
			case acquireCh <- id:
			case <-runCtx.Done():
				return
			}
		}
	}()

	// Collector: the only goroutine touching the sink and the store.
	var (
		succeeded  []string
		persistErr error
	)
	for out := range outcomeCh {
		if out.err != nil {
			summary.Failed++
			logger.Warn("track failed",
				logging.String(logging.FieldTrackID, out.id),
				logging.String(logging.FieldStage, out.stage),
				logging.String(logging.FieldReason, out.reason),
			)
			if err := p.store.RecordFailure(ctx, out.id, out.stage, out.reason); err != nil && persistErr == nil {
				persistErr = fmt.Errorf("record failure: %w", err)
				cancel()
			}
			continue
		}

		if err := p.sink.Append(out.row); err != nil {
			// A result that cannot be persisted invalidates the run:
			// stop pulling new work instead of burning downloads.
			if persistErr == nil {
				persistErr = fmt.Errorf("append result: %w", err)
				cancel()
			}
			summary.Failed++
			continue
		}
		summary.Succeeded++
		succeeded = append(succeeded, out.id)
		logger.Info("track complete",
			logging.String(logging.FieldTrackID, out.id),
			logging.Int("tempo", out.row.Tempo),
			logging.String("key", out.row.KeyNotation),
		)
	}

	if err := p.store.ClearFailures(ctx, succeeded); err != nil && persistErr == nil {
		persistErr = fmt.Errorf("clear failures: %w", err)
	}

	summary.Elapsed = time.Since(started)
	if persistErr != nil {
		return summary, persistErr
	}
	return summary, ctx.Err()
}

func (p *Pipeline) acquireWorker(ctx context.Context, logger *slog.Logger, scratch string, in <-chan string, out chan<- job, outcomes chan<- outcome) {
	minDelay, maxDelay := p.cfg.RequestDelayBounds()
	for id := range in {
		if ctx.Err() != nil {
			return
		}
		politeSleep(ctx, minDelay, maxDelay)

		dest := filepath.Join(scratch, id+".source.wav")
		logger.Debug("fetching audio", logging.String(logging.FieldTrackID, id))
		if err := p.fetcher.Fetch(ctx, id, dest); err != nil {
			outcomes <- outcome{id: id, stage: StageAcquire, reason: failureReason(err), err: err}
			continue
		}
		out <- job{id: id, path: dest}
	}
}

func (p *Pipeline) extractWorker(ctx context.Context, scratch string, in <-chan job, out chan<- job, outcomes chan<- outcome) {
	for raw := range in {
		if ctx.Err() != nil {
			_ = fileutil.RemoveQuiet(raw.path)
			continue
		}
		dst := filepath.Join(scratch, raw.id+".segment.wav")
		err := p.cutter.Cut(ctx, raw.path, dst, p.cfg.SegmentDuration())
		// The raw download is never needed again, success or not.
		_ = fileutil.RemoveQuiet(raw.path)
		if err != nil {
			outcomes <- outcome{id: raw.id, stage: StageExtract, reason: failureReason(err), err: err}
			continue
		}
		out <- job{id: raw.id, path: dst}
	}
}

func (p *Pipeline) analyzeWorker(in <-chan job, outcomes chan<- outcome) {
	for seg := range in {
		result, err := p.analyze(seg.path)
		_ = fileutil.RemoveQuiet(seg.path)
		if err != nil {
			outcomes <- outcome{id: seg.id, stage: StageAnalyze, reason: failureReason(err), err: err}
			continue
		}
		outcomes <- outcome{
			id: seg.id,
			row: features.Row{
				ID:          seg.id,
				Tempo:       int(math.Round(result.Tempo)),
				Key:         result.Key,
				KeyNotation: result.KeyNotation,
				Energy:      result.Energy,
			},
		}
	}
}

func politeSleep(ctx context.Context, minDelay, maxDelay time.Duration) {
	if maxDelay <= 0 {
		return
	}
	delay := minDelay
	if maxDelay > minDelay {
		delay += time.Duration(rand.Int63n(int64(maxDelay - minDelay)))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// failureReason condenses an error into a short label for the failure
// record, keeping the classified prefix when one applies.
func failureReason(err error) string {
	if err == nil {
		return ""
	}
	reason := err.Error()
	switch {
	case errors.Is(err, ytdlp.ErrUnavailable):
		reason = "unavailable: " + strings.TrimPrefix(reason, ytdlp.ErrUnavailable.Error()+": ")
	case errors.Is(err, ytdlp.ErrNetwork):
		reason = "network: " + strings.TrimPrefix(reason, ytdlp.ErrNetwork.Error()+": ")
	}
	const maxReason = 200
	if len(reason) > maxReason {
		reason = reason[:maxReason]
	}
	return reason
}
