package render

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"megacut/internal/logging"
)

func okResult(chunk Chunk, slot int) Result {
	scene := chunk.Scenes[slot]
	return Result{
		Scene:    scene,
		Status:   StatusOK,
		ClipPath: filepath.Join("/work", "clip_"+scene.SourceID()+"_"+scene.Label()),
	}
}

func TestAssembleRestoresSequenceOrder(t *testing.T) {
	media := &fakeMedia{}
	assembler := NewAssembler(media, nil, logging.NewNop())
	chunk := newTestChunk(5)

	// Results arrive in completion order, not sequence order.
	results := []Result{
		okResult(chunk, 3),
		okResult(chunk, 0),
		okResult(chunk, 4),
		okResult(chunk, 1),
		okResult(chunk, 2),
	}

	output := filepath.Join(t.TempDir(), "mega_cut_part_1.mp4")
	if err := assembler.Assemble(context.Background(), chunk, results, output); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	calls := media.concatCalls()
	if len(calls) != 1 {
		t.Fatalf("concat calls = %d, want 1", len(calls))
	}
	want := make([]string, len(chunk.Scenes))
	for i := range chunk.Scenes {
		want[i] = okResult(chunk, i).ClipPath
	}
	for i, clip := range calls[0].clipPaths {
		if clip != want[i] {
			t.Fatalf("clip %d = %q, want %q", i, clip, want[i])
		}
	}
}

func TestAssembleWithholdsOutputOnFailure(t *testing.T) {
	media := &fakeMedia{}
	assembler := NewAssembler(media, nil, logging.NewNop())
	chunk := newTestChunk(4)

	results := []Result{
		okResult(chunk, 0),
		{Scene: chunk.Scenes[1], Status: StatusFailed, Err: errors.New("boom")},
		okResult(chunk, 2),
		{Scene: chunk.Scenes[3], Status: StatusFailed, Err: errors.New("bang")},
	}

	err := assembler.Assemble(context.Background(), chunk, results, filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, ErrChunkRender) {
		t.Fatalf("err = %v, want ErrChunkRender", err)
	}
	var chunkErr *ChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("err = %T, want *ChunkError", err)
	}
	if len(chunkErr.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(chunkErr.Failures))
	}
	if len(media.concatCalls()) != 0 {
		t.Fatal("concat must not run for a failed chunk")
	}
}

func TestAssembleTreatsCancelledScenesAsInterruption(t *testing.T) {
	media := &fakeMedia{}
	assembler := NewAssembler(media, nil, logging.NewNop())
	chunk := newTestChunk(2)

	results := []Result{
		okResult(chunk, 0),
		{Scene: chunk.Scenes[1], Status: StatusCancelled, Err: context.Canceled},
	}

	err := assembler.Assemble(context.Background(), chunk, results, filepath.Join(t.TempDir(), "out.mp4"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrChunkRender) {
		t.Fatal("interrupted chunk must not look like a render failure")
	}
	if len(media.concatCalls()) != 0 {
		t.Fatal("concat must not run for an interrupted chunk")
	}
}

func TestAssembleRejectsBadCoverage(t *testing.T) {
	media := &fakeMedia{}
	assembler := NewAssembler(media, nil, logging.NewNop())
	chunk := newTestChunk(3)
	output := filepath.Join(t.TempDir(), "out.mp4")

	short := []Result{okResult(chunk, 0)}
	if err := assembler.Assemble(context.Background(), chunk, short, output); err == nil {
		t.Fatal("expected error for missing results")
	}

	duplicated := []Result{okResult(chunk, 0), okResult(chunk, 0), okResult(chunk, 2)}
	if err := assembler.Assemble(context.Background(), chunk, duplicated, output); err == nil {
		t.Fatal("expected error for duplicate scene result")
	}

	foreign := []Result{okResult(chunk, 0), okResult(chunk, 1), {Scene: makeScene(99, "X", 0, 5), Status: StatusOK}}
	if err := assembler.Assemble(context.Background(), chunk, foreign, output); err == nil {
		t.Fatal("expected error for foreign scene result")
	}
}
