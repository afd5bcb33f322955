package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndNormalization(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
movie_dir = "`+dir+`"
output_dir = "`+dir+`"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to resolve, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Render.ChunkDurationMinutes != defaultChunkDurationMinutes {
		t.Fatalf("expected default chunk duration, got %d", cfg.Render.ChunkDurationMinutes)
	}
	if cfg.Render.SceneWorkers != defaultSceneWorkers {
		t.Fatalf("expected default worker count, got %d", cfg.Render.SceneWorkers)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("expected PATH binaries, got %q / %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestLoadRejectsMissingMovieDir(t *testing.T) {
	path := writeConfig(t, `
[paths]
output_dir = "/tmp/out"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for missing movie_dir")
	}
}

func TestLoadRejectsInvalidLookahead(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
movie_dir = "`+dir+`"
output_dir = "`+dir+`"

[render]
chunk_lookahead = 5
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Values above the maximum are clamped during normalization.
	if cfg.Render.ChunkLookahead != 2 {
		t.Fatalf("expected lookahead clamp to 2, got %d", cfg.Render.ChunkLookahead)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "elsewhere")
	if err := os.MkdirAll(override, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Setenv("MEGACUT_MOVIE_DIR", override)
	path := writeConfig(t, `
[paths]
movie_dir = "`+dir+`"
output_dir = "`+dir+`"
`)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.MovieDir != override {
		t.Fatalf("expected env override %q, got %q", override, cfg.Paths.MovieDir)
	}
}

func TestValidateLoggingValues(t *testing.T) {
	cfg := Default()
	cfg.Paths.MovieDir = "/tmp"
	cfg.Paths.OutputDir = "/tmp"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad log format")
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := CreateSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
