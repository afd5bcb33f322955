package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChunkRender marks a chunk whose output was withheld because at least
// one member scene failed. Other chunks keep processing.
var ErrChunkRender = errors.New("chunk render failed")

// SceneFailure records one failed scene inside a chunk.
type SceneFailure struct {
	SceneLabel string
	Err        error
}

// ChunkError reports every failed scene of one chunk. Partial chunk outputs
// are never written; the error lists what prevented the chunk.
type ChunkError struct {
	Chunk    int
	Failures []SceneFailure
}

func (e *ChunkError) Error() string {
	labels := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		labels = append(labels, failure.SceneLabel)
	}
	return fmt.Sprintf("chunk %d: %d scene(s) failed: %s", e.Chunk, len(e.Failures), strings.Join(labels, "; "))
}

// Unwrap lets callers classify chunk errors with errors.Is(err, ErrChunkRender).
func (e *ChunkError) Unwrap() error {
	return ErrChunkRender
}
