package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"groovescan/internal/analysis"
	"groovescan/internal/logging"
	"groovescan/internal/media/segment"
	"groovescan/internal/pipeline"
	"groovescan/internal/services/ytdlp"
	"groovescan/internal/sink"
	"groovescan/internal/trackstore"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process all outstanding candidates once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if err := preflightTools(cfg.Tools.YtdlpBinary, cfg.Tools.FFmpegBinary, cfg.Tools.FFprobeBinary); err != nil {
				return err
			}

			// One run at a time per state database.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "groovescan.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another groovescan run is already in progress")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			runID := uuid.New().String()

			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			logger, err := logging.New(logging.Options{
				Level:  level,
				Format: resolveLogFormat(cfg.Logging.Format, cmd.OutOrStdout()),
				OutputPaths: []string{
					"stdout",
					filepath.Join(cfg.Paths.LogDir, "groovescan.log"),
				},
			})
			if err != nil {
				return err
			}

			store, err := trackstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			resultSink, err := sink.Open(cfg.Paths.TracksFile)
			if err != nil {
				return err
			}
			defer resultSink.Close()

			fetcher, err := ytdlp.New(cfg.Tools.YtdlpBinary, cfg.FetchTimeout())
			if err != nil {
				return err
			}
			cutter, err := segment.New(cfg.Tools.FFmpegBinary, cfg.Tools.FFprobeBinary, cfg.ExtractTimeout())
			if err != nil {
				return err
			}

			p, err := pipeline.New(cfg, logger, fetcher, cutter, analysis.Analyze, resultSink, store)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, runErr := p.Run(runCtx, runID)

			finished := time.Now().UTC()
			record := trackstore.Run{
				RunID:            summary.RunID,
				StartedAt:        finished.Add(-summary.Elapsed),
				FinishedAt:       finished,
				Total:            summary.Total,
				SkippedCompleted: summary.SkippedCompleted,
				SkippedFailed:    summary.SkippedFailed,
				Succeeded:        summary.Succeeded,
				Failed:           summary.Failed,
			}
			if err := store.RecordRun(cmd.Context(), record); err != nil {
				logger.Warn("record run summary", logging.Error(err))
			}

			printRunSummary(cmd, summary)
			return runErr
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level for this run")
	return cmd
}

func preflightTools(binaries ...string) error {
	var missing []string
	for _, binary := range binaries {
		if _, err := exec.LookPath(binary); err != nil {
			missing = append(missing, binary)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found in PATH: %v", missing)
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, summary pipeline.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Metric", "Count"},
		[][]string{
			{"Candidates", strconv.Itoa(summary.Total)},
			{"Already complete", strconv.Itoa(summary.SkippedCompleted)},
			{"Recently failed", strconv.Itoa(summary.SkippedFailed)},
			{"Attempted", strconv.Itoa(summary.Attempted)},
			{"Succeeded", strconv.Itoa(summary.Succeeded)},
			{"Failed", strconv.Itoa(summary.Failed)},
		},
		[]columnAlignment{alignLeft, alignRight},
	))
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Elapsed.Round(time.Millisecond))
}
