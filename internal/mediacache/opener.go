package mediacache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"megacut/internal/media/ffprobe"
	"megacut/internal/scenes"
)

// FileOpener resolves source identifiers to .mkv files inside the movie
// folder and probes them with ffprobe.
type FileOpener struct {
	MovieDir      string
	FFprobeBinary string
}

// Open locates the source file, trying the raw title first and then the
// sanitized filename variant, and probes it.
func (o FileOpener) Open(ctx context.Context, sourceID string) (*Handle, error) {
	candidates := scenes.Scene{Title: sourceID}.SourcePaths(o.MovieDir)
	var path string
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			path = candidate
			break
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no file for %q under %s", sourceID, o.MovieDir)
	}

	probe, err := ffprobe.Inspect(ctx, o.FFprobeBinary, path)
	if err != nil {
		return nil, err
	}
	return &Handle{SourceID: sourceID, Path: path, Probe: probe}, nil
}
