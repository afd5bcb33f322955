package ffmpeg

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"megacut/internal/logging"
)

func newTestCLI() *CLI {
	return NewCLI(Options{
		Overlay: OverlayStyle{Font: "DejaVuSans", FontSize: 24, ShowSeconds: 2, FadeSeconds: 1},
	}, logging.NewNop())
}

func TestExtractArgsSeekAndCodecs(t *testing.T) {
	cli := newTestCLI()
	args := cli.extractArgs(ExtractRequest{
		SourcePath:  "/movies/a.mkv",
		Start:       90 * time.Second,
		End:         150 * time.Second,
		AudioStream: -1,
		OutputPath:  "/tmp/clip.mp4",
	})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 00:01:30.00") || !strings.Contains(joined, "-to 00:02:30.00") {
		t.Fatalf("seek parameters missing: %s", joined)
	}
	if !strings.Contains(joined, "-map 0:a:0?") {
		t.Fatalf("expected default audio mapping: %s", joined)
	}
	if !strings.Contains(joined, "-c:v libx264") || !strings.Contains(joined, "-c:a aac") {
		t.Fatalf("codec defaults missing: %s", joined)
	}
	if strings.Contains(joined, "-vf") {
		t.Fatalf("unexpected overlay filter without text: %s", joined)
	}
}

func TestExtractArgsSelectsAudioStream(t *testing.T) {
	cli := newTestCLI()
	args := cli.extractArgs(ExtractRequest{
		SourcePath:  "/movies/a.mkv",
		Start:       0,
		End:         time.Minute,
		AudioStream: 2,
		OutputPath:  "/tmp/clip.mp4",
	})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-map 0:2") {
		t.Fatalf("expected explicit audio stream mapping: %s", joined)
	}
}

func TestOverlayFilterEscapesText(t *testing.T) {
	cli := newTestCLI()
	filter := cli.overlayFilter("MAY 2016: 50% done")
	if filter == "" {
		t.Fatal("expected filter for overlay text")
	}
	if !strings.Contains(filter, `50\% done`) {
		t.Fatalf("percent not escaped: %s", filter)
	}
	if !strings.Contains(filter, "x=w-tw-20:y=20") {
		t.Fatalf("overlay not pinned top-right: %s", filter)
	}
	if !strings.Contains(filter, "enable='lt(t,3.00)'") {
		t.Fatalf("overlay window wrong: %s", filter)
	}
}

func TestParseProgressLine(t *testing.T) {
	total := 100 * time.Second

	update, ok := parseProgressLine("out_time_us=50000000", total)
	if !ok || update.Percent != 50 {
		t.Fatalf("expected 50%%, got %#v ok=%v", update, ok)
	}

	update, ok = parseProgressLine("progress=end", total)
	if !ok || update.Percent != 100 {
		t.Fatalf("expected terminal update, got %#v ok=%v", update, ok)
	}

	if _, ok := parseProgressLine("fps=24.0", total); ok {
		t.Fatal("fps lines should not produce updates")
	}
	if _, ok := parseProgressLine("garbage", total); ok {
		t.Fatal("malformed lines should not produce updates")
	}

	// Overshoot clamps to 100.
	update, ok = parseProgressLine("out_time_us=150000000", total)
	if !ok || update.Percent != 100 {
		t.Fatalf("expected clamped percent, got %#v", update)
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	path, err := writeConcatList([]string{"/tmp/it's a clip.mp4"})
	if err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}
	t.Cleanup(func() { removeFile(t, path) })

	body := readFile(t, path)
	if !strings.Contains(body, `file '/tmp/it'\''s a clip.mp4'`) {
		t.Fatalf("quote escaping wrong: %s", body)
	}
}

func TestConcatenateRemovesOutputOnFailure(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "mega_cut_part_1.mp4")
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_OUTPUT="+outputPath)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := newTestCLI()
	err := cli.Concatenate(context.Background(), []string{"/tmp/clip1.mp4"}, outputPath, time.Minute, nil)
	if err == nil {
		t.Fatal("expected concat failure")
	}
	if _, statErr := os.Stat(outputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("truncated output left on disk after failed concat: %v", statErr)
	}
}

// TestHelperProcess stands in for ffmpeg: it writes part of the output file
// the way a progressive -y write would, then dies with a nonzero status.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if path := os.Getenv("FFMPEG_HELPER_OUTPUT"); path != "" {
		_ = os.WriteFile(path, []byte("partial"), 0o644)
	}
	os.Exit(1)
}
