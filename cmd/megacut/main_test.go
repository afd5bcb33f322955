package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	cfgPath := filepath.Join(base, "megacut.toml")
	content := fmt.Sprintf(`[paths]
movie_dir = %q
output_dir = %q
log_dir = %q
`, filepath.Join(base, "movies"), filepath.Join(base, "output"), filepath.Join(base, "logs"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScenesSampleAndValidateRoundTrip(t *testing.T) {
	cfgPath := writeTestConfig(t)
	samplePath := filepath.Join(t.TempDir(), "scenes.csv")

	out, err := runCommand(t, "scenes", "sample", samplePath)
	if err != nil {
		t.Fatalf("scenes sample: %v\n%s", err, out)
	}
	if _, statErr := os.Stat(samplePath); statErr != nil {
		t.Fatalf("sample file missing: %v", statErr)
	}

	out, err = runCommand(t, "--config", cfgPath, "scenes", "validate", samplePath)
	if err != nil {
		t.Fatalf("scenes validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "3 scenes") {
		t.Fatalf("validate output missing scene count:\n%s", out)
	}
	if !strings.Contains(out, "mega_cut_part_1.mp4") {
		t.Fatalf("validate output missing planned chunk:\n%s", out)
	}
}

func TestRenderDryRunPlansWithoutRendering(t *testing.T) {
	cfgPath := writeTestConfig(t)
	samplePath := filepath.Join(t.TempDir(), "scenes.csv")
	if out, err := runCommand(t, "scenes", "sample", samplePath); err != nil {
		t.Fatalf("scenes sample: %v\n%s", err, out)
	}

	out, err := runCommand(t, "--config", cfgPath, "render", "--dry-run", samplePath)
	if err != nil {
		t.Fatalf("render --dry-run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Chunk") || !strings.Contains(out, "mega_cut_part_1.mp4") {
		t.Fatalf("dry run output missing plan table:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	data, readErr := os.ReadFile(target)
	if readErr != nil {
		t.Fatalf("read generated config: %v", readErr)
	}
	if !strings.Contains(string(data), "movie_dir") {
		t.Fatalf("generated config missing movie_dir:\n%s", data)
	}

	if out, err = runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatalf("expected error without --overwrite, got:\n%s", out)
	}
	if out, err = runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v\n%s", err, out)
	}
}

func TestStatusWithEmptyHistory(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No runs recorded yet") {
		t.Fatalf("status output = %q", out)
	}
}

func TestRenderPlanTableFormatsChunks(t *testing.T) {
	cfgPath := writeTestConfig(t)
	dir := t.TempDir()
	listPath := filepath.Join(dir, "scenes.csv")
	csv := `movie_show,season_episode,episode_title,start_timecode,end_timecode,timeline_placement,comment,language,audio_title,reality_designation
Movie A,,,"0:00:00","1:10:00",MAY 2016,,en,,
Movie B,,,"0:00:00","1:20:00",JUN 2016,,en,,
`
	if err := os.WriteFile(listPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write scene list: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "render", "--dry-run", "--chunk-minutes", "75", listPath)
	if err != nil {
		t.Fatalf("render --dry-run: %v\n%s", err, out)
	}
	// 70 and 80 minutes cannot share a 75-minute chunk.
	if !strings.Contains(out, "mega_cut_part_2.mp4") {
		t.Fatalf("expected two planned chunks:\n%s", out)
	}
}
