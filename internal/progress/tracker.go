package progress

import (
	"log/slog"
	"sync"
	"time"

	"megacut/internal/logging"
)

// EventType names the lifecycle moments the tracker publishes.
type EventType string

const (
	EventRunStarted     EventType = "run_started"
	EventChunkStarted   EventType = "chunk_started"
	EventSceneCompleted EventType = "scene_completed"
	EventSceneFailed    EventType = "scene_failed"
	EventChunkCompleted EventType = "chunk_completed"
	EventChunkFailed    EventType = "chunk_failed"
	EventRunCompleted   EventType = "run_completed"
)

// Event is one progress update. ETA is zero until enough scenes have
// completed to estimate it.
type Event struct {
	Type            EventType
	ChunkIndex      int
	ChunkCount      int
	ScenesCompleted int
	ScenesFailed    int
	SceneCount      int
	Percent         float64
	Elapsed         time.Duration
	ETA             time.Duration
	Message         string
}

// Sink consumes progress events. Implementations must tolerate events being
// dropped under pressure; the tracker never blocks on a slow sink.
type Sink interface {
	Publish(Event)
}

// Tracker aggregates render progress across one run. All methods are safe
// for concurrent use by pool workers, and safe on a nil receiver so callers
// can run untracked.
type Tracker struct {
	sink   *asyncSink
	logger *slog.Logger

	mu         sync.Mutex
	start      time.Time
	sceneCount int
	chunkCount int
	completed  int
	failed     int
	sceneTimes []time.Duration
}

// NewTracker builds a tracker for a run of the given size. A nil sink is
// valid and restricts the tracker to log output.
func NewTracker(sceneCount, chunkCount int, sink Sink, logger *slog.Logger) *Tracker {
	t := &Tracker{
		sink:       newAsyncSink(sink),
		logger:     logging.NewComponentLogger(logger, "progress"),
		start:      time.Now(),
		sceneCount: sceneCount,
		chunkCount: chunkCount,
	}
	t.publish(Event{Type: EventRunStarted, Message: "run started"})
	return t
}

// Close flushes and stops the event dispatcher.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.sink.close()
}

// ChunkStarted records the start of a chunk's rendering.
func (t *Tracker) ChunkStarted(index, sceneCount int) {
	if t == nil {
		return
	}
	t.logger.Info("chunk started",
		logging.Int(logging.FieldChunk, index),
		logging.Int("scenes", sceneCount),
		logging.String(logging.FieldEventType, string(EventChunkStarted)),
	)
	t.publish(Event{Type: EventChunkStarted, ChunkIndex: index, Message: "chunk started"})
}

// SceneCompleted records one successful scene render and its duration.
func (t *Tracker) SceneCompleted(chunkIndex int, renderTime time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.completed++
	t.sceneTimes = append(t.sceneTimes, renderTime)
	t.mu.Unlock()
	t.publish(Event{Type: EventSceneCompleted, ChunkIndex: chunkIndex})
}

// SceneFailed records one failed scene render.
func (t *Tracker) SceneFailed(chunkIndex int, sceneLabel string, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.failed++
	t.mu.Unlock()
	t.logger.Warn("scene render failed",
		logging.Int(logging.FieldChunk, chunkIndex),
		logging.String("scene", sceneLabel),
		logging.Error(err),
	)
	t.publish(Event{Type: EventSceneFailed, ChunkIndex: chunkIndex, Message: sceneLabel})
}

// ChunkCompleted records a finished chunk output.
func (t *Tracker) ChunkCompleted(index int, outputPath string, took time.Duration) {
	if t == nil {
		return
	}
	t.logger.Info("chunk completed",
		logging.Int(logging.FieldChunk, index),
		logging.String("output", outputPath),
		logging.Duration("took", took),
		logging.String(logging.FieldEventType, string(EventChunkCompleted)),
	)
	t.publish(Event{Type: EventChunkCompleted, ChunkIndex: index, Message: outputPath})
}

// ChunkFailed records a chunk whose output was withheld.
func (t *Tracker) ChunkFailed(index int, err error) {
	if t == nil {
		return
	}
	t.logger.Error("chunk failed",
		logging.Int(logging.FieldChunk, index),
		logging.Error(err),
		logging.String(logging.FieldEventType, string(EventChunkFailed)),
	)
	t.publish(Event{Type: EventChunkFailed, ChunkIndex: index})
}

// RunCompleted publishes the terminal event.
func (t *Tracker) RunCompleted(message string) {
	if t == nil {
		return
	}
	t.publish(Event{Type: EventRunCompleted, Message: message})
}

// Snapshot reports the current totals, percent complete, and ETA.
func (t *Tracker) Snapshot() Event {
	if t == nil {
		return Event{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Event {
	event := Event{
		ChunkCount:      t.chunkCount,
		ScenesCompleted: t.completed,
		ScenesFailed:    t.failed,
		SceneCount:      t.sceneCount,
		Elapsed:         time.Since(t.start),
	}
	if t.sceneCount > 0 {
		event.Percent = float64(t.completed) / float64(t.sceneCount) * 100
	}
	if remaining := t.sceneCount - t.completed - t.failed; remaining > 0 && len(t.sceneTimes) > 0 {
		var total time.Duration
		for _, d := range t.sceneTimes {
			total += d
		}
		average := total / time.Duration(len(t.sceneTimes))
		event.ETA = average * time.Duration(remaining)
	}
	return event
}

func (t *Tracker) publish(event Event) {
	t.mu.Lock()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	snapshot.Type = event.Type
	snapshot.ChunkIndex = event.ChunkIndex
	snapshot.Message = event.Message
	t.sink.publish(snapshot)
}

// asyncSink decouples the pipeline from sink latency: events flow through a
// buffered channel and are dropped when the consumer falls behind.
type asyncSink struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func newAsyncSink(sink Sink) *asyncSink {
	a := &asyncSink{
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		for event := range a.events {
			if sink != nil {
				sink.Publish(event)
			}
		}
	}()
	return a
}

func (a *asyncSink) publish(event Event) {
	select {
	case a.events <- event:
	default:
	}
}

func (a *asyncSink) close() {
	a.once.Do(func() {
		close(a.events)
	})
	<-a.done
}
