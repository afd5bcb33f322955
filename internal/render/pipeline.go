package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"megacut/internal/logging"
	"megacut/internal/media/ffmpeg"
	"megacut/internal/mediacache"
	"megacut/internal/progress"
	"megacut/internal/scenes"
)

// Notifier receives run and chunk milestones. The ntfy-backed
// notifications.Service satisfies it; a nil Notifier disables delivery.
type Notifier interface {
	NotifyRunStarted(ctx context.Context, sceneCount, chunkCount int) error
	NotifyChunkCompleted(ctx context.Context, chunkIndex, chunkCount int, outputFile string) error
	NotifyChunkFailed(ctx context.Context, chunkIndex int, err error) error
	NotifyRunCompleted(ctx context.Context, completedChunks, failedChunks int, duration time.Duration) error
	NotifyRunCancelled(ctx context.Context, completedChunks, remainingChunks int) error
}

// Recorder persists run history. The sqlite journal satisfies it; a nil
// Recorder disables persistence. Recorder errors are logged, never fatal.
type Recorder interface {
	RecordRunStart(ctx context.Context, runID string, started time.Time, sceneCount, chunkCount int) error
	RecordChunk(ctx context.Context, runID string, chunk ChunkReport) error
	RecordRunFinish(ctx context.Context, report RunReport) error
}

// PipelineOptions configure a Pipeline.
type PipelineOptions struct {
	// ChunkCeiling caps the cumulative duration of one output chunk.
	ChunkCeiling time.Duration
	// SceneWorkers bounds concurrent scene renders within a chunk.
	SceneWorkers int
	// Lookahead is 1 for strictly sequential chunks or 2 to render the next
	// chunk while the previous one concatenates.
	Lookahead int
	// OutputDir receives the numbered chunk output files.
	OutputDir string
	// WorkDir holds intermediate scene clips; a run-scoped subdirectory is
	// created and removed per run.
	WorkDir string

	Cache    *mediacache.Cache
	Media    ffmpeg.Capability
	Tracker  *progress.Tracker
	Notifier Notifier
	Recorder Recorder
	Logger   *slog.Logger
}

// Pipeline orchestrates a full render run: plan chunks, render scenes
// through the worker pool, assemble chunks strictly in index order, and
// tear the media cache down exactly once at the end.
type Pipeline struct {
	opts   PipelineOptions
	logger *slog.Logger
}

// NewPipeline validates options and builds a pipeline.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("pipeline requires a media cache")
	}
	if opts.Media == nil {
		return nil, fmt.Errorf("pipeline requires a media capability")
	}
	if opts.ChunkCeiling <= 0 {
		return nil, fmt.Errorf("chunk ceiling must be positive, got %v", opts.ChunkCeiling)
	}
	if opts.Lookahead < 1 {
		opts.Lookahead = 1
	}
	if opts.Lookahead > 2 {
		opts.Lookahead = 2
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Pipeline{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "pipeline"),
	}, nil
}

type renderedChunk struct {
	chunk   Chunk
	results []Result
	took    time.Duration
}

func (p *Pipeline) renderChunk(ctx context.Context, pool *Pool, chunk Chunk) renderedChunk {
	p.opts.Tracker.ChunkStarted(chunk.Index, len(chunk.Scenes))
	started := time.Now()
	results := pool.RenderScenes(ctx, chunk)
	return renderedChunk{chunk: chunk, results: results, took: time.Since(started)}
}

// Run renders the scene list end to end and reports every chunk's outcome.
// Cancellation is cooperative: chunks already written stay on disk, the
// chunk in flight is abandoned without partial output, and the report marks
// the run cancelled. The media cache is cleared exactly once on the way out,
// whatever path the run takes.
func (p *Pipeline) Run(ctx context.Context, list []scenes.Scene) (RunReport, error) {
	chunks, err := PlanChunks(list, p.opts.ChunkCeiling)
	if err != nil {
		return RunReport{}, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	report := RunReport{RunID: runID, Started: time.Now()}

	workDir := filepath.Join(p.opts.WorkDir, "run-"+runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return report, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("could not remove work dir", logging.String("path", workDir), logging.Error(err))
		}
	}()
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}

	// All render workers are joined before Run returns, so clearing here
	// never yanks a handle out from under a worker.
	defer p.opts.Cache.Clear()

	logger.Info("run started",
		logging.Int("scenes", len(list)),
		logging.Int("chunks", len(chunks)),
		logging.Duration("ceiling", p.opts.ChunkCeiling),
	)
	p.notifyRunStarted(ctx, len(list), len(chunks))
	p.recordRunStart(ctx, runID, report.Started, len(list), len(chunks))

	pool := NewPool(p.opts.SceneWorkers, p.opts.Cache, p.opts.Media, workDir, p.opts.Tracker, p.opts.Logger)
	assembler := NewAssembler(p.opts.Media, p.opts.Tracker, p.opts.Logger)

	if p.opts.Lookahead <= 1 {
		for _, chunk := range chunks {
			if ctx.Err() != nil {
				break
			}
			rc := p.renderChunk(ctx, pool, chunk)
			report.Chunks = append(report.Chunks, p.assembleChunk(ctx, assembler, rc, len(chunks)))
		}
	} else {
		// The producer renders chunks in order; the unbuffered handoff lets
		// the next chunk's scenes render while the previous one concatenates,
		// and never runs further ahead than that.
		rendered := make(chan renderedChunk)
		go func() {
			defer close(rendered)
			for _, chunk := range chunks {
				if ctx.Err() != nil {
					return
				}
				rendered <- p.renderChunk(ctx, pool, chunk)
			}
		}()
		for rc := range rendered {
			report.Chunks = append(report.Chunks, p.assembleChunk(ctx, assembler, rc, len(chunks)))
		}
	}

	// Chunks the producer never rendered show up as cancelled.
	for _, chunk := range chunks[len(report.Chunks):] {
		report.Chunks = append(report.Chunks, ChunkReport{
			Index:      chunk.Index,
			SceneCount: len(chunk.Scenes),
			Duration:   chunk.Duration(),
			Status:     ChunkCancelled,
			Err:        context.Cause(ctx),
		})
	}

	report.Finished = time.Now()
	report.Cancelled = ctx.Err() != nil

	p.finishRun(ctx, logger, report, len(chunks))
	if report.Cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

func (p *Pipeline) assembleChunk(ctx context.Context, assembler *Assembler, rc renderedChunk, chunkCount int) ChunkReport {
	chunkReport := ChunkReport{
		Index:      rc.chunk.Index,
		SceneCount: len(rc.chunk.Scenes),
		Duration:   rc.chunk.Duration(),
		OutputPath: filepath.Join(p.opts.OutputDir, OutputFileName(rc.chunk.Index)),
	}
	started := time.Now()
	err := assembler.Assemble(ctx, rc.chunk, rc.results, chunkReport.OutputPath)
	chunkReport.Took = rc.took + time.Since(started)

	// Intermediate clips are no longer needed whatever the outcome.
	for _, result := range rc.results {
		if result.ClipPath != "" {
			_ = os.Remove(result.ClipPath)
		}
	}

	switch {
	case err == nil:
		chunkReport.Status = ChunkCompleted
		p.opts.Tracker.ChunkCompleted(rc.chunk.Index, chunkReport.OutputPath, chunkReport.Took)
		p.notifyChunkCompleted(ctx, rc.chunk.Index, chunkCount, filepath.Base(chunkReport.OutputPath))
	case ctx.Err() != nil:
		chunkReport.Status = ChunkCancelled
		chunkReport.Err = err
		// An interrupted concat may have written part of the file; a partial
		// chunk on disk is indistinguishable from a finished one.
		_ = os.Remove(chunkReport.OutputPath)
		chunkReport.OutputPath = ""
	default:
		chunkReport.Status = ChunkFailed
		chunkReport.Err = err
		_ = os.Remove(chunkReport.OutputPath)
		chunkReport.OutputPath = ""
		p.opts.Tracker.ChunkFailed(rc.chunk.Index, err)
		p.notifyChunkFailed(ctx, rc.chunk.Index, err)
	}

	runID, _ := logging.RunIDFromContext(ctx)
	p.recordChunk(ctx, runID, chunkReport)
	return chunkReport
}

// OutputFileName names a chunk's final output file.
func OutputFileName(chunkIndex int) string {
	return fmt.Sprintf("mega_cut_part_%d.mp4", chunkIndex)
}

func (p *Pipeline) finishRun(ctx context.Context, logger *slog.Logger, report RunReport, chunkCount int) {
	completed := report.CompletedChunks()
	failed := report.FailedChunks()
	if report.Cancelled {
		logger.Warn("run cancelled",
			logging.Int("completed_chunks", completed),
			logging.Int("remaining_chunks", chunkCount-completed-failed),
		)
		p.opts.Tracker.RunCompleted("cancelled")
		p.notifyRunCancelled(ctx, completed, chunkCount-completed-failed)
	} else {
		logger.Info("run complete",
			logging.Int("completed_chunks", completed),
			logging.Int("failed_chunks", failed),
			logging.Duration("took", report.Duration()),
		)
		p.opts.Tracker.RunCompleted("complete")
		p.notifyRunCompleted(ctx, completed, failed, report.Duration())
	}
	p.recordRunFinish(ctx, report)
}

func (p *Pipeline) notifyRunStarted(ctx context.Context, sceneCount, chunkCount int) {
	if p.opts.Notifier == nil {
		return
	}
	if err := p.opts.Notifier.NotifyRunStarted(ctx, sceneCount, chunkCount); err != nil {
		p.logger.Warn("run started notification failed", logging.Error(err))
	}
}

func (p *Pipeline) notifyChunkCompleted(ctx context.Context, chunkIndex, chunkCount int, outputFile string) {
	if p.opts.Notifier == nil {
		return
	}
	if err := p.opts.Notifier.NotifyChunkCompleted(ctx, chunkIndex, chunkCount, outputFile); err != nil {
		p.logger.Warn("chunk notification failed", logging.Int(logging.FieldChunk, chunkIndex), logging.Error(err))
	}
}

func (p *Pipeline) notifyChunkFailed(ctx context.Context, chunkIndex int, chunkErr error) {
	if p.opts.Notifier == nil {
		return
	}
	if err := p.opts.Notifier.NotifyChunkFailed(ctx, chunkIndex, chunkErr); err != nil {
		p.logger.Warn("chunk notification failed", logging.Int(logging.FieldChunk, chunkIndex), logging.Error(err))
	}
}

func (p *Pipeline) notifyRunCompleted(ctx context.Context, completed, failed int, duration time.Duration) {
	if p.opts.Notifier == nil {
		return
	}
	if err := p.opts.Notifier.NotifyRunCompleted(ctx, completed, failed, duration); err != nil {
		p.logger.Warn("run notification failed", logging.Error(err))
	}
}

func (p *Pipeline) notifyRunCancelled(ctx context.Context, completed, remaining int) {
	if p.opts.Notifier == nil {
		return
	}
	// The run context is already cancelled; give delivery its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.opts.Notifier.NotifyRunCancelled(ctx, completed, remaining); err != nil {
		p.logger.Warn("run notification failed", logging.Error(err))
	}
}

func (p *Pipeline) recordRunStart(ctx context.Context, runID string, started time.Time, sceneCount, chunkCount int) {
	if p.opts.Recorder == nil {
		return
	}
	if err := p.opts.Recorder.RecordRunStart(ctx, runID, started, sceneCount, chunkCount); err != nil {
		p.logger.Warn("journal run start failed", logging.Error(err))
	}
}

func (p *Pipeline) recordChunk(ctx context.Context, runID string, chunk ChunkReport) {
	if p.opts.Recorder == nil {
		return
	}
	if err := p.opts.Recorder.RecordChunk(context.WithoutCancel(ctx), runID, chunk); err != nil {
		p.logger.Warn("journal chunk failed", logging.Int(logging.FieldChunk, chunk.Index), logging.Error(err))
	}
}

func (p *Pipeline) recordRunFinish(ctx context.Context, report RunReport) {
	if p.opts.Recorder == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := p.opts.Recorder.RecordRunFinish(ctx, report); err != nil {
		p.logger.Warn("journal run finish failed", logging.Error(err))
	}
}
