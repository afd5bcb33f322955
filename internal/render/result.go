package render

import (
	"time"

	"megacut/internal/scenes"
)

// ResultStatus classifies the outcome of rendering one scene.
type ResultStatus string

const (
	StatusOK        ResultStatus = "ok"
	StatusFailed    ResultStatus = "failed"
	StatusCancelled ResultStatus = "cancelled"
)

// Result is the outcome of rendering one scene: a clip artifact on success,
// a cause on failure, or a cancellation marker. Exactly one Result exists
// per submitted scene.
type Result struct {
	Scene      scenes.Scene
	Status     ResultStatus
	ClipPath   string
	Err        error
	RenderTime time.Duration
}
