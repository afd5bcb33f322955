package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"megacut/internal/deps"
	"megacut/internal/journal"
	"megacut/internal/logging"
	"megacut/internal/media/ffmpeg"
	"megacut/internal/mediacache"
	"megacut/internal/notifications"
	"megacut/internal/progress"
	"megacut/internal/render"
	"megacut/internal/runlock"
	"megacut/internal/scenes"
	"megacut/internal/timecode"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var workers int
	var chunkMinutes int
	var lookahead int

	cmd := &cobra.Command{
		Use:   "render <scenes.csv>",
		Short: "Render a scene list into chunked output videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Render.SceneWorkers = workers
			}
			if chunkMinutes > 0 {
				cfg.Render.ChunkDurationMinutes = chunkMinutes
			}
			if lookahead > 0 {
				cfg.Render.ChunkLookahead = lookahead
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlanTable(chunks))
			if dryRun {
				return nil
			}

			if err := deps.Verify(cfg); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lock, err := runlock.Acquire(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer func() {
				_ = lock.Release()
			}()

			var recorder render.Recorder
			store, err := journal.Open(cfg)
			if err != nil {
				logger.Warn("run history unavailable", logging.Error(err))
			} else {
				defer store.Close()
				recorder = store
			}

			media := ffmpeg.NewCLI(ffmpeg.Options{
				Binary:     cfg.FFmpegBinary(),
				VideoCodec: cfg.FFmpeg.VideoCodec,
				AudioCodec: cfg.FFmpeg.AudioCodec,
				Overlay: ffmpeg.OverlayStyle{
					Font:        cfg.Render.OverlayFont,
					FontSize:    cfg.Render.OverlayFontSize,
					ShowSeconds: cfg.Render.OverlayShowSeconds,
					FadeSeconds: cfg.Render.OverlayFadeSeconds,
				},
				ExtractTimeout: time.Duration(cfg.FFmpeg.ExtractTimeout) * time.Second,
				ConcatTimeout:  time.Duration(cfg.FFmpeg.ConcatTimeout) * time.Second,
			}, logger)

			cache := mediacache.New(mediacache.FileOpener{
				MovieDir:      cfg.Paths.MovieDir,
				FFprobeBinary: cfg.FFprobeBinary(),
			}, logger)

			tracker := progress.NewTracker(len(list), len(chunks), newConsoleSink(out), logger)
			defer tracker.Close()

			pipeline, err := render.NewPipeline(render.PipelineOptions{
				ChunkCeiling: ceiling,
				SceneWorkers: cfg.Render.SceneWorkers,
				Lookahead:    cfg.Render.ChunkLookahead,
				OutputDir:    cfg.Paths.OutputDir,
				WorkDir:      filepath.Join(cfg.Paths.LogDir, "work"),
				Cache:        cache,
				Media:        media,
				Tracker:      tracker,
				Notifier:     notifications.NewService(cfg),
				Recorder:     recorder,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			report, runErr := pipeline.Run(runCtx, list)
			fmt.Fprintln(out, renderReportTable(report))
			if report.Cancelled {
				fmt.Fprintf(out, "Run cancelled: %d of %d chunks rendered before interruption\n",
					report.CompletedChunks(), len(report.Chunks))
			}
			if runErr != nil {
				return runErr
			}
			if failed := report.FailedChunks(); failed > 0 {
				return fmt.Errorf("%d chunk(s) failed; see %s for details", failed, filepath.Join(cfg.Paths.LogDir, "megacut.log"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan chunks without rendering")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the configured scene worker count")
	cmd.Flags().IntVar(&chunkMinutes, "chunk-minutes", 0, "Override the configured chunk duration ceiling")
	cmd.Flags().IntVar(&lookahead, "lookahead", 0, "Override the configured chunk lookahead (1 or 2)")
	return cmd
}

func renderPlanTable(chunks []render.Chunk) string {
	rows := make([][]string, 0, len(chunks))
	for _, chunk := range chunks {
		first := chunk.Scenes[0].Sequence
		last := chunk.Scenes[len(chunk.Scenes)-1].Sequence
		rows = append(rows, []string{
			strconv.Itoa(chunk.Index),
			strconv.Itoa(len(chunk.Scenes)),
			fmt.Sprintf("%d-%d", first, last),
			timecode.Format(chunk.Duration()),
			render.OutputFileName(chunk.Index),
		})
	}
	return renderTable(
		[]string{"Chunk", "Scenes", "Sequence", "Duration", "Output"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft},
	)
}

func renderReportTable(report render.RunReport) string {
	rows := make([][]string, 0, len(report.Chunks))
	for _, chunk := range report.Chunks {
		detail := chunk.OutputPath
		if chunk.Err != nil {
			detail = chunk.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(chunk.Index),
			string(chunk.Status),
			timecode.Format(chunk.Duration),
			chunk.Took.Round(time.Second).String(),
			detail,
		})
	}
	return renderTable(
		[]string{"Chunk", "Status", "Duration", "Took", "Output / Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}
