package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"megacut/internal/journal"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent render runs and their chunk outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				chunks, err := store.ChunksForRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(chunks) == 0 {
					fmt.Fprintf(out, "No chunks recorded for run %s\n", runID)
					return nil
				}
				fmt.Fprintln(out, renderChunkHistoryTable(chunks))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderRunHistoryTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show chunk outcomes for one run ID")
	return cmd
}

func renderRunHistoryTable(runs []journal.RunRow) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			run.RunID,
			run.StartedAt.Local().Format(time.DateTime),
			finished,
			strconv.Itoa(run.SceneCount),
			fmt.Sprintf("%d/%d", run.CompletedChunks, run.ChunkCount),
			strconv.Itoa(run.FailedChunks),
			yesNo(run.Cancelled),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Finished", "Scenes", "Chunks", "Failed", "Cancelled"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func renderChunkHistoryTable(chunks []journal.ChunkRow) string {
	rows := make([][]string, 0, len(chunks))
	for _, chunk := range chunks {
		detail := chunk.OutputPath
		if chunk.Error != "" {
			detail = chunk.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(chunk.Index),
			chunk.Status,
			strconv.Itoa(chunk.SceneCount),
			chunk.Duration.Round(time.Second).String(),
			chunk.Took.Round(time.Second).String(),
			detail,
		})
	}
	return renderTable(
		[]string{"Chunk", "Status", "Scenes", "Duration", "Took", "Output / Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}
