package render

import (
	"time"
)

// ChunkStatus names the terminal state of one chunk within a run.
type ChunkStatus string

const (
	ChunkCompleted ChunkStatus = "completed"
	ChunkFailed    ChunkStatus = "failed"
	ChunkCancelled ChunkStatus = "cancelled"
)

// ChunkReport records the outcome of one chunk.
type ChunkReport struct {
	Index      int
	SceneCount int
	Duration   time.Duration
	Status     ChunkStatus
	OutputPath string
	Err        error
	Took       time.Duration
}

// RunReport summarises a whole pipeline run. On cancellation it still
// enumerates every chunk so callers can tell completed output files from
// work that never happened.
type RunReport struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Chunks    []ChunkReport
	Cancelled bool
}

// CompletedChunks counts chunks whose output file was written.
func (r RunReport) CompletedChunks() int {
	return r.countStatus(ChunkCompleted)
}

// FailedChunks counts chunks whose output was withheld due to scene failures.
func (r RunReport) FailedChunks() int {
	return r.countStatus(ChunkFailed)
}

// CancelledChunks counts chunks skipped or interrupted by cancellation.
func (r RunReport) CancelledChunks() int {
	return r.countStatus(ChunkCancelled)
}

// OutputFiles lists the written chunk outputs in emission order.
func (r RunReport) OutputFiles() []string {
	var files []string
	for _, chunk := range r.Chunks {
		if chunk.Status == ChunkCompleted {
			files = append(files, chunk.OutputPath)
		}
	}
	return files
}

// Duration is the wall-clock span of the run.
func (r RunReport) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

func (r RunReport) countStatus(status ChunkStatus) int {
	count := 0
	for _, chunk := range r.Chunks {
		if chunk.Status == status {
			count++
		}
	}
	return count
}
