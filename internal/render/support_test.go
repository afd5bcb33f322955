package render

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"megacut/internal/media/ffmpeg"
	"megacut/internal/mediacache"
	"megacut/internal/scenes"
)

func makeScene(sequence int, title string, startMinutes, durationMinutes int) scenes.Scene {
	return scenes.Scene{
		Title:    title,
		Start:    time.Duration(startMinutes) * time.Minute,
		End:      time.Duration(startMinutes+durationMinutes) * time.Minute,
		Sequence: sequence,
	}
}

type fakeOpener struct {
	missing map[string]bool
}

func (o *fakeOpener) Open(_ context.Context, sourceID string) (*mediacache.Handle, error) {
	if o.missing[sourceID] {
		return nil, fmt.Errorf("no file for %s", sourceID)
	}
	return &mediacache.Handle{
		SourceID: sourceID,
		Path:     "/media/" + sourceID + ".mkv",
	}, nil
}

type concatCall struct {
	clipPaths  []string
	outputPath string
}

// fakeMedia records extract and concat calls, optionally failing or stalling
// particular scenes and tracking the concurrency high-water mark.
type fakeMedia struct {
	mu          sync.Mutex
	extracts    []ffmpeg.ExtractRequest
	concats     []concatCall
	inFlight    int
	maxInFlight int

	extractErr   func(req ffmpeg.ExtractRequest) error
	extractDelay time.Duration
	concatErr    error
	onConcat     func(call concatCall)
	writeOutputs bool
}

func (m *fakeMedia) ExtractScene(ctx context.Context, req ffmpeg.ExtractRequest) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.extracts = append(m.extracts, req)
	m.mu.Unlock()

	if m.extractDelay > 0 {
		select {
		case <-time.After(m.extractDelay):
		case <-ctx.Done():
			m.decrement()
			return ctx.Err()
		}
	}
	m.decrement()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.extractErr != nil {
		if err := m.extractErr(req); err != nil {
			return err
		}
	}
	return nil
}

func (m *fakeMedia) decrement() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *fakeMedia) Concatenate(ctx context.Context, clipPaths []string, outputPath string, _ time.Duration, progress func(ffmpeg.ProgressUpdate)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	call := concatCall{clipPaths: append([]string(nil), clipPaths...), outputPath: outputPath}
	m.mu.Lock()
	m.concats = append(m.concats, call)
	m.mu.Unlock()

	if progress != nil {
		progress(ffmpeg.ProgressUpdate{Percent: 100})
	}
	if m.onConcat != nil {
		m.onConcat(call)
	}
	if m.concatErr != nil {
		return m.concatErr
	}
	if m.writeOutputs {
		if err := os.WriteFile(outputPath, []byte("video"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (m *fakeMedia) concatCalls() []concatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]concatCall(nil), m.concats...)
}
