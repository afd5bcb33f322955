package scenes_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"megacut/internal/logging"
	"megacut/internal/scenes"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadParsesScenesInOrder(t *testing.T) {
	path := writeFile(t, "scenes.csv", `movie_show,season_episode,episode_title,start_timecode,end_timecode,timeline_placement,comment,language,audio_title,reality_designation
Iron Man,,,0:00:30,0:02:00,2008,,en,Original Audio,EARTH-199999
Agents of S.H.I.E.L.D.,1.01,Pilot,0:01:00,0:01:45,2013,,en,,
`)

	list, err := scenes.Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(list))
	}
	first := list[0]
	if first.Title != "Iron Man" || first.Sequence != 0 {
		t.Fatalf("unexpected first scene: %#v", first)
	}
	if first.Duration() != 90*time.Second {
		t.Fatalf("expected 90s duration, got %v", first.Duration())
	}
	second := list[1]
	if second.Sequence != 1 || second.SeasonEpisode != "1.01" {
		t.Fatalf("unexpected second scene: %#v", second)
	}
}

func TestLoadSkipsIncompleteRows(t *testing.T) {
	path := writeFile(t, "scenes.csv", `movie_show,start_timecode,end_timecode,timeline_placement
Iron Man,0:00:30,0:02:00,2008
,0:00:10,0:00:20,2009
Thor,,0:02:00,2011
Thor,0:05:00,0:02:00,2011
Hulk,0:00:05,0:00:25,2008
`)

	list, err := scenes.Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 valid scenes, got %d", len(list))
	}
	// Sequence indices stay dense after skips.
	if list[0].Sequence != 0 || list[1].Sequence != 1 {
		t.Fatalf("expected dense sequence indices, got %d and %d", list[0].Sequence, list[1].Sequence)
	}
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	path := writeFile(t, "scenes.csv", `movie_show,start_timecode
Iron Man,0:00:30
`)
	_, err := scenes.Load(path, logging.NewNop())
	if !errors.Is(err, scenes.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadRejectsEmptyList(t *testing.T) {
	path := writeFile(t, "scenes.csv", `movie_show,start_timecode,end_timecode,timeline_placement
`)
	_, err := scenes.Load(path, logging.NewNop())
	if !errors.Is(err, scenes.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSourcePathsSanitizesTitle(t *testing.T) {
	scene := scenes.Scene{Title: "Thor: The Dark World", Start: 0, End: time.Second}
	paths := scene.SourcePaths("/movies")
	if len(paths) != 2 {
		t.Fatalf("expected two candidates, got %v", paths)
	}
	if paths[0] != "/movies/Thor: The Dark World.mkv" {
		t.Fatalf("unexpected raw candidate %q", paths[0])
	}
	if paths[1] != "/movies/Thor_The_Dark_World.mkv" {
		t.Fatalf("unexpected sanitized candidate %q", paths[1])
	}
}

func TestValidateSequenceRejectsDuplicates(t *testing.T) {
	list := []scenes.Scene{
		{Title: "A", Start: 0, End: time.Second, Sequence: 0},
		{Title: "B", Start: 0, End: time.Second, Sequence: 0},
	}
	if err := scenes.ValidateSequence(list); !errors.Is(err, scenes.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWriteSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	if err := scenes.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	list, err := scenes.Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 sample scenes, got %d", len(list))
	}
}
