package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"megacut/internal/logging"
	"megacut/internal/media/ffmpeg"
	"megacut/internal/mediacache"
	"megacut/internal/progress"
	"megacut/internal/scenes"
)

// Pool renders the scenes of one chunk concurrently with a bounded number
// of workers. Every submitted scene yields exactly one Result, including
// scenes skipped after cancellation.
type Pool struct {
	workers int
	cache   *mediacache.Cache
	media   ffmpeg.Capability
	workDir string
	tracker *progress.Tracker
	logger  *slog.Logger
}

// NewPool constructs a pool. workers below one is clamped to one.
func NewPool(workers int, cache *mediacache.Cache, media ffmpeg.Capability, workDir string, tracker *progress.Tracker, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		cache:   cache,
		media:   media,
		workDir: workDir,
		tracker: tracker,
		logger:  logging.NewComponentLogger(logger, "pool"),
	}
}

type job struct {
	slot  int
	scene scenes.Scene
}

// RenderScenes renders every scene of the chunk and returns one Result per
// scene, in submission order. Cancellation is cooperative: in-flight scenes
// run to completion or fail on their own context checks, and scenes not yet
// started come back with StatusCancelled.
func (p *Pool) RenderScenes(ctx context.Context, chunk Chunk) []Result {
	results := make([]Result, len(chunk.Scenes))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.slot] = p.renderScene(ctx, chunk.Index, j.scene)
			}
		}()
	}

	for i, scene := range chunk.Scenes {
		jobs <- job{slot: i, scene: scene}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (p *Pool) renderScene(ctx context.Context, chunkIndex int, scene scenes.Scene) Result {
	if err := ctx.Err(); err != nil {
		return Result{Scene: scene, Status: StatusCancelled, Err: err}
	}

	started := time.Now()
	handle, err := p.cache.Acquire(ctx, scene.SourceID())
	if err != nil {
		if ctx.Err() != nil {
			return Result{Scene: scene, Status: StatusCancelled, Err: ctx.Err()}
		}
		p.tracker.SceneFailed(chunkIndex, scene.Label(), err)
		return Result{Scene: scene, Status: StatusFailed, Err: err}
	}
	defer p.cache.Release(handle)

	audioStream := -1
	if scene.Language != "" {
		if index, ok := handle.Probe.SelectAudioTrack(scene.Language, scene.AudioTitle); ok {
			audioStream = index
		} else {
			p.logger.Warn("no audio track matches requested language, keeping default",
				logging.String(logging.FieldSource, scene.SourceID()),
				logging.String("language", scene.Language),
			)
		}
	}

	clipPath := filepath.Join(p.workDir, fmt.Sprintf("chunk_%03d_scene_%04d.mp4", chunkIndex, scene.Sequence))
	err = p.media.ExtractScene(ctx, ffmpeg.ExtractRequest{
		SourcePath:  handle.Path,
		Start:       scene.Start,
		End:         scene.End,
		AudioStream: audioStream,
		OverlayText: scene.TimelinePlacement,
		OutputPath:  clipPath,
	})
	took := time.Since(started)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Scene: scene, Status: StatusCancelled, Err: ctx.Err(), RenderTime: took}
		}
		p.tracker.SceneFailed(chunkIndex, scene.Label(), err)
		return Result{Scene: scene, Status: StatusFailed, Err: err, RenderTime: took}
	}

	p.tracker.SceneCompleted(chunkIndex, took)
	p.logger.Debug("scene rendered",
		logging.Int(logging.FieldChunk, chunkIndex),
		logging.Int(logging.FieldSceneIndex, scene.Sequence),
		logging.Duration("took", took),
	)
	return Result{Scene: scene, Status: StatusOK, ClipPath: clipPath, RenderTime: took}
}
