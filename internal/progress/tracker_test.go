package progress

import (
	"errors"
	"sync"
	"testing"
	"time"

	"megacut/internal/logging"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) byType(eventType EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Event
	for _, event := range s.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestTrackerCountsAndPercent(t *testing.T) {
	sink := &captureSink{}
	tracker := NewTracker(4, 2, sink, logging.NewNop())

	tracker.ChunkStarted(1, 2)
	tracker.SceneCompleted(1, 2*time.Second)
	tracker.SceneCompleted(1, 4*time.Second)
	tracker.SceneFailed(2, "scene 3", errors.New("boom"))
	tracker.Close()

	snapshot := tracker.Snapshot()
	if snapshot.ScenesCompleted != 2 {
		t.Fatalf("completed = %d, want 2", snapshot.ScenesCompleted)
	}
	if snapshot.ScenesFailed != 1 {
		t.Fatalf("failed = %d, want 1", snapshot.ScenesFailed)
	}
	if snapshot.Percent != 50 {
		t.Fatalf("percent = %v, want 50", snapshot.Percent)
	}
	// One scene pending, average render time 3s.
	if snapshot.ETA != 3*time.Second {
		t.Fatalf("eta = %v, want 3s", snapshot.ETA)
	}

	if got := sink.byType(EventSceneCompleted); len(got) != 2 {
		t.Fatalf("scene completed events = %d, want 2", len(got))
	}
	if got := sink.byType(EventSceneFailed); len(got) != 1 {
		t.Fatalf("scene failed events = %d, want 1", len(got))
	}
}

func TestTrackerNilReceiverIsSafe(t *testing.T) {
	var tracker *Tracker
	tracker.ChunkStarted(1, 3)
	tracker.SceneCompleted(1, time.Second)
	tracker.SceneFailed(1, "scene", errors.New("boom"))
	tracker.ChunkCompleted(1, "out.mp4", time.Second)
	tracker.ChunkFailed(2, errors.New("boom"))
	tracker.RunCompleted("done")
	tracker.Close()
	if got := tracker.Snapshot(); got.SceneCount != 0 {
		t.Fatalf("nil snapshot scene count = %d, want 0", got.SceneCount)
	}
}

func TestTrackerETAZeroWithoutSamples(t *testing.T) {
	tracker := NewTracker(3, 1, nil, logging.NewNop())
	defer tracker.Close()
	if eta := tracker.Snapshot().ETA; eta != 0 {
		t.Fatalf("eta = %v, want 0 before any scene completes", eta)
	}
}
