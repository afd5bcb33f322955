package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"megacut/internal/logging"
	"megacut/internal/render"
	"megacut/internal/scenes"
	"megacut/internal/timecode"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "Scene list utilities",
	}

	scenesCmd.AddCommand(newScenesValidateCommand(ctx))
	scenesCmd.AddCommand(newScenesMigrateCommand(ctx))
	scenesCmd.AddCommand(newScenesSampleCommand())

	return scenesCmd
}

func newScenesValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenes.csv>",
		Short: "Parse a scene list and summarize its chunk plan",
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
			ceiling := time.Duration(cfg.Render.ChunkDurationMinutes) * time.Minute
			chunks, err := render.PlanChunks(list, ceiling)
			if err != nil {
				return err
			}

			var total time.Duration
			for _, scene := range list {
				total += scene.Duration()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d scenes, total runtime %s, %d chunks at a %d-minute ceiling\n",
				len(list), timecode.Format(total), len(chunks), cfg.Render.ChunkDurationMinutes)
			fmt.Fprintln(out, renderPlanTable(chunks))
			return nil
		},
	}
}

func newScenesMigrateCommand(ctx *commandContext) *cobra.Command {
	var language string
	var audioTitle string

	cmd := &cobra.Command{
		Use:   "migrate <old.csv> <new.csv>",
		Short: "Convert a legacy positional scene spreadsheet to the current format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}

			count, err := scenes.Migrate(args[0], args[1], scenes.MigrateOptions{
				Language:   language,
				AudioTitle: audioTitle,
			}, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d scenes to %s\n", count, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Default audio language stamped onto migrated rows")
	cmd.Flags().StringVar(&audioTitle, "audio-title", "", "Default audio track title stamped onto migrated rows")
	return cmd
}

func newScenesSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sample <path>",
		Short:       "Write a sample scene list CSV",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := scenes.WriteSample(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample scene list to %s\n", args[0])
			return nil
		},
	}
}
