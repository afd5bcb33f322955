package analysis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"megacut/internal/logging"
	"megacut/internal/media/ffprobe"
	"megacut/internal/scenes"
	"megacut/internal/testsupport"
)

func sceneFor(sequence int, title, lang string) scenes.Scene {
	return scenes.Scene{
		Title:    title,
		Start:    0,
		End:      10 * time.Minute,
		Language: lang,
		Sequence: sequence,
	}
}

func audioStream(index int, lang, title string) ffprobe.Stream {
	return ffprobe.Stream{
		Index:     index,
		CodecName: "dts",
		CodecType: "audio",
		Channels:  6,
		Tags:      ffprobe.StreamTags{Language: lang, Title: title},
	}
}

func TestAnalyzeReportsTracksAndUnmatchedLanguages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.MovieDir+"/Movie A.mkv", 16)
	testsupport.WriteFile(t, cfg.Paths.MovieDir+"/Movie B.mkv", 16)

	analyzer := New(cfg.Paths.MovieDir, "ffprobe", logging.NewNop())
	analyzer.inspect = func(_ context.Context, _, path string) (ffprobe.Result, error) {
		streams := []ffprobe.Stream{
			{Index: 0, CodecType: "video", CodecName: "h264"},
			audioStream(1, "eng", "Surround"),
		}
		if path == cfg.Paths.MovieDir+"/Movie B.mkv" {
			streams = append(streams, audioStream(2, "fra", ""))
		}
		return ffprobe.Result{Streams: streams}, nil
	}

	list := []scenes.Scene{
		sceneFor(1, "Movie A", "en"),
		sceneFor(2, "Movie A", "ja"),
		sceneFor(3, "Movie B", "fre"),
	}

	reports, err := analyzer.Analyze(context.Background(), list)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}

	a := reports[0]
	if a.SourceID != "Movie A" {
		t.Fatalf("first report source = %q, want Movie A", a.SourceID)
	}
	if len(a.Tracks) != 1 {
		t.Fatalf("Movie A tracks = %d, want 1 (video stream excluded)", len(a.Tracks))
	}
	if a.Tracks[0].Display != "English" {
		t.Fatalf("track display = %q, want English", a.Tracks[0].Display)
	}
	if len(a.Unmatched) != 1 || a.Unmatched[0] != "ja" {
		t.Fatalf("Movie A unmatched = %v, want [ja]", a.Unmatched)
	}

	b := reports[1]
	if len(b.Unmatched) != 0 {
		t.Fatalf("Movie B unmatched = %v, want none (fre matches fra)", b.Unmatched)
	}
}

func TestAnalyzeMissingSourceIsReportedNotFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.MovieDir+"/Present.mkv", 16)

	analyzer := New(cfg.Paths.MovieDir, "ffprobe", logging.NewNop())
	analyzer.inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{audioStream(1, "eng", "")}}, nil
	}

	list := []scenes.Scene{
		sceneFor(1, "Absent", "en"),
		sceneFor(2, "Present", "en"),
	}

	reports, err := analyzer.Analyze(context.Background(), list)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	if !errors.Is(reports[0].Err, os.ErrNotExist) {
		t.Fatalf("missing source err = %v, want ErrNotExist", reports[0].Err)
	}
	if reports[1].Err != nil {
		t.Fatalf("present source err = %v, want nil", reports[1].Err)
	}
}

func TestAnalyzeDeduplicatesRequestedLanguages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.MovieDir+"/Movie A.mkv", 16)

	analyzer := New(cfg.Paths.MovieDir, "ffprobe", logging.NewNop())
	analyzer.inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{audioStream(1, "eng", "")}}, nil
	}

	list := []scenes.Scene{
		sceneFor(1, "Movie A", "en"),
		sceneFor(2, "Movie A", "eng"),
		sceneFor(3, "Movie A", "english"),
	}

	reports, err := analyzer.Analyze(context.Background(), list)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(reports[0].Requested) != 1 {
		t.Fatalf("requested = %v, want a single deduplicated entry", reports[0].Requested)
	}
}
