package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"groovescan/internal/sink"
	"groovescan/internal/trackstore"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runLimit int
	var showFailures bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent runs and outstanding failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := trackstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			results, err := sink.Open(cfg.Paths.TracksFile)
			if err != nil {
				return err
			}
			completed := len(results.CompletedIDs())
			_ = results.Close()
			fmt.Fprintf(out, "Dataset rows: %d\n", completed)

			runs, err := store.RecentRuns(cmd.Context(), runLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
			} else {
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.StartedAt.Local().Format(time.DateTime),
						run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
						strconv.Itoa(run.Total),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						strconv.Itoa(run.SkippedCompleted),
						strconv.Itoa(run.SkippedFailed),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Duration", "Total", "OK", "Failed", "Skip done", "Skip failed"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				))
			}

			failures, err := store.Failures(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Outstanding failures: %d\n", len(failures))
			if showFailures && len(failures) > 0 {
				rows := make([][]string, 0, len(failures))
				for _, failure := range failures {
					rows = append(rows, []string{
						failure.TrackID,
						failure.Stage,
						strconv.Itoa(failure.Attempts),
						failure.ObservedAt.Local().Format(time.DateTime),
						failure.Reason,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Track", "Stage", "Attempts", "Last seen", "Reason"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runLimit, "runs", 10, "Number of recent runs to display")
	cmd.Flags().BoolVar(&showFailures, "failures", false, "List individual failure records")
	return cmd
}
