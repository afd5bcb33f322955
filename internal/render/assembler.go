package render

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"megacut/internal/logging"
	"megacut/internal/media/ffmpeg"
	"megacut/internal/progress"
)

// Assembler turns a chunk's scene results into one output file. A chunk is
// all-or-nothing: any failed or cancelled scene withholds the output and the
// chunk reports every failure at once.
type Assembler struct {
	media   ffmpeg.Capability
	tracker *progress.Tracker
	logger  *slog.Logger
}

// NewAssembler constructs an assembler over the given media capability.
func NewAssembler(media ffmpeg.Capability, tracker *progress.Tracker, logger *slog.Logger) *Assembler {
	return &Assembler{
		media:   media,
		tracker: tracker,
		logger:  logging.NewComponentLogger(logger, "assembler"),
	}
}

// Assemble validates the chunk's results, restores sequence order regardless
// of render completion order, and concatenates the clips into outputPath.
// Cancelled scenes surface as a context error so callers can distinguish an
// interrupted chunk from a failed one.
func (a *Assembler) Assemble(ctx context.Context, chunk Chunk, results []Result, outputPath string) error {
	if err := verifyCoverage(chunk, results); err != nil {
		return err
	}

	ordered := make([]Result, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Scene.Sequence < ordered[j].Scene.Sequence
	})

	var failures []SceneFailure
	cancelled := false
	clipPaths := make([]string, 0, len(ordered))
	for _, result := range ordered {
		switch result.Status {
		case StatusOK:
			clipPaths = append(clipPaths, result.ClipPath)
		case StatusCancelled:
			cancelled = true
		default:
			failures = append(failures, SceneFailure{SceneLabel: result.Scene.Label(), Err: result.Err})
		}
	}
	if len(failures) > 0 {
		return &ChunkError{Chunk: chunk.Index, Failures: failures}
	}
	if cancelled {
		return fmt.Errorf("chunk %d interrupted: %w", chunk.Index, context.Canceled)
	}

	a.logger.Info("concatenating chunk",
		logging.Int(logging.FieldChunk, chunk.Index),
		logging.Int("clips", len(clipPaths)),
		logging.String("output", outputPath),
	)
	err := a.media.Concatenate(ctx, clipPaths, outputPath, chunk.Duration(), func(update ffmpeg.ProgressUpdate) {
		a.logger.Debug("concat progress",
			logging.Int(logging.FieldChunk, chunk.Index),
			logging.Float64("percent", update.Percent),
		)
	})
	if err != nil {
		return fmt.Errorf("chunk %d concatenate: %w", chunk.Index, err)
	}
	return nil
}

// verifyCoverage checks the one-result-per-scene invariant before anything
// touches the output path.
func verifyCoverage(chunk Chunk, results []Result) error {
	if len(results) != len(chunk.Scenes) {
		return fmt.Errorf("chunk %d: %d results for %d scenes", chunk.Index, len(results), len(chunk.Scenes))
	}
	expected := make(map[int]bool, len(chunk.Scenes))
	for _, scene := range chunk.Scenes {
		expected[scene.Sequence] = false
	}
	for _, result := range results {
		seen, ok := expected[result.Scene.Sequence]
		if !ok {
			return fmt.Errorf("chunk %d: result for foreign scene %d", chunk.Index, result.Scene.Sequence)
		}
		if seen {
			return fmt.Errorf("chunk %d: duplicate result for scene %d", chunk.Index, result.Scene.Sequence)
		}
		expected[result.Scene.Sequence] = true
	}
	return nil
}
