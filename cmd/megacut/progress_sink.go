package main

import (
	"fmt"
	"io"
	"time"

	"megacut/internal/progress"
)

// consoleSink prints a compact progress line per scene or chunk milestone.
// Events may be dropped under pressure; each line carries the full totals so
// a dropped line never loses information.
type consoleSink struct {
	out io.Writer
}

func newConsoleSink(out io.Writer) progress.Sink {
	return consoleSink{out: out}
}

func (s consoleSink) Publish(event progress.Event) {
	switch event.Type {
	case progress.EventChunkStarted:
		fmt.Fprintf(s.out, "chunk %d started\n", event.ChunkIndex)
	case progress.EventSceneCompleted, progress.EventSceneFailed:
		line := fmt.Sprintf("scenes %d/%d (%.1f%%)", event.ScenesCompleted, event.SceneCount, event.Percent)
		if event.ScenesFailed > 0 {
			line += fmt.Sprintf(", %d failed", event.ScenesFailed)
		}
		if event.ETA > 0 {
			line += fmt.Sprintf(", eta %s", event.ETA.Round(time.Second))
		}
		fmt.Fprintln(s.out, line)
	case progress.EventChunkCompleted:
		fmt.Fprintf(s.out, "chunk %d complete: %s\n", event.ChunkIndex, event.Message)
	case progress.EventChunkFailed:
		fmt.Fprintf(s.out, "chunk %d failed\n", event.ChunkIndex)
	}
}
