package render

import (
	"time"

	"megacut/internal/scenes"
)

// Chunk is a contiguous, duration-bounded group of scenes emitted as one
// output unit. Index is 1-based and names the output file.
type Chunk struct {
	Index  int
	Scenes []scenes.Scene
}

// Duration sums the member scene durations.
func (c Chunk) Duration() time.Duration {
	var total time.Duration
	for _, scene := range c.Scenes {
		total += scene.Duration()
	}
	return total
}

// PlanChunks greedily partitions the ordered scene list into chunks whose
// cumulative duration stays at or under ceiling. Scenes are never split or
// reordered; a single scene longer than the ceiling forms its own chunk.
func PlanChunks(list []scenes.Scene, ceiling time.Duration) ([]Chunk, error) {
	if err := scenes.ValidateSequence(list); err != nil {
		return nil, err
	}

	var chunks []Chunk
	current := Chunk{Index: 1}
	var running time.Duration
	for _, scene := range list {
		duration := scene.Duration()
		if len(current.Scenes) > 0 && running+duration > ceiling {
			chunks = append(chunks, current)
			current = Chunk{Index: current.Index + 1}
			running = 0
		}
		current.Scenes = append(current.Scenes, scene)
		running += duration
	}
	chunks = append(chunks, current)
	return chunks, nil
}
