package deps

import (
	"os"
	"path/filepath"
	"testing"

	"megacut/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unconfigured", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("present binary = %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary = %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unconfigured binary = %#v", results[2])
	}
}

func TestVerifyWithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := Verify(cfg); err != nil {
		t.Fatalf("Verify with stubs: %v", err)
	}
}

func TestVerifyReportsMissingTools(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.FFmpeg.FFmpegBinary = "definitely-not-ffmpeg"
	cfg.FFmpeg.FFprobeBinary = "definitely-not-ffprobe"
	if err := Verify(cfg); err == nil {
		t.Fatal("expected error for missing binaries")
	}
}
