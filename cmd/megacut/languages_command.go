package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"megacut/internal/analysis"
	"megacut/internal/logging"
	"megacut/internal/scenes"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages <scenes.csv>",
		Short: "Report the audio languages available in each source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}

			list, err := scenes.Load(args[0], logger)
			if err != nil {
				return err
			}

			analyzer := analysis.New(cfg.Paths.MovieDir, cfg.FFprobeBinary(), logger)
			reports, err := analyzer.Analyze(cmd.Context(), list)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := 0
			for _, report := range reports {
				if report.Err != nil {
					problems++
					fmt.Fprintf(out, "%s: unreadable (%v)\n", report.SourceID, report.Err)
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", report.SourceID, report.Path)
				fmt.Fprintln(out, renderTrackTable(report.Tracks))
				if len(report.Unmatched) > 0 {
					problems++
					fmt.Fprintf(out, "  no audio track matches: %s\n", strings.Join(report.Unmatched, ", "))
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d source(s) need attention before rendering", problems)
			}
			return nil
		},
	}
}

func renderTrackTable(tracks []analysis.Track) string {
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(track.Index),
			track.Display,
			track.Title,
			track.Codec,
			strconv.Itoa(track.Channels),
		})
	}
	return renderTable(
		[]string{"Stream", "Language", "Title", "Codec", "Channels"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
