// Package analysis inspects the source files behind a scene list and
// reports which audio languages each one carries. Running it before a
// render surfaces missing files and unmatchable language requests while
// they are still cheap to fix.
package analysis

import (
	"context"
	"log/slog"
	"os"

	"megacut/internal/language"
	"megacut/internal/logging"
	"megacut/internal/media/ffprobe"
	"megacut/internal/scenes"
)

// Track describes one audio stream of a source file.
type Track struct {
	Index    int
	Language string
	Display  string
	Title    string
	Codec    string
	Channels int
}

// SourceReport summarizes one distinct source referenced by the scene list.
type SourceReport struct {
	SourceID string
	Path     string
	Err      error
	Tracks   []Track
	// Requested holds the distinct languages the scene list asks of this
	// source; Unmatched lists those no audio track satisfies.
	Requested []string
	Unmatched []string
}

// Analyzer probes sources under a movie directory.
type Analyzer struct {
	movieDir string
	binary   string
	inspect  func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	logger   *slog.Logger
}

// New constructs an analyzer using the given ffprobe binary.
func New(movieDir, ffprobeBinary string, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		movieDir: movieDir,
		binary:   ffprobeBinary,
		inspect:  ffprobe.Inspect,
		logger:   logging.NewComponentLogger(logger, "analysis"),
	}
}

// Analyze probes every distinct source in the scene list, in first-use
// order. Unreadable sources are reported, not fatal.
func (a *Analyzer) Analyze(ctx context.Context, list []scenes.Scene) ([]SourceReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order := make([]string, 0)
	requested := make(map[string][]string)
	byID := make(map[string]scenes.Scene)
	for _, scene := range list {
		id := scene.SourceID()
		if _, seen := byID[id]; !seen {
			byID[id] = scene
			order = append(order, id)
		}
		if scene.Language != "" && !containsLanguage(requested[id], scene.Language) {
			requested[id] = append(requested[id], scene.Language)
		}
	}

	reports := make([]SourceReport, 0, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, a.analyzeSource(ctx, byID[id], requested[id]))
	}
	return reports, nil
}

func (a *Analyzer) analyzeSource(ctx context.Context, scene scenes.Scene, requested []string) SourceReport {
	report := SourceReport{SourceID: scene.SourceID(), Requested: requested}

	for _, candidate := range scene.SourcePaths(a.movieDir) {
		if _, err := os.Stat(candidate); err == nil {
			report.Path = candidate
			break
		}
	}
	if report.Path == "" {
		report.Err = os.ErrNotExist
		a.logger.Warn("source file not found", logging.String(logging.FieldSource, report.SourceID))
		return report
	}

	probe, err := a.inspect(ctx, a.binary, report.Path)
	if err != nil {
		report.Err = err
		a.logger.Warn("probe failed", logging.String(logging.FieldSource, report.SourceID), logging.Error(err))
		return report
	}

	for _, track := range probe.AudioTracks() {
		report.Tracks = append(report.Tracks, Track{
			Index:    track.Index,
			Language: track.Language,
			Display:  language.DisplayName(track.Language),
			Title:    track.Title,
			Codec:    track.Codec,
			Channels: track.Channels,
		})
	}

	for _, want := range requested {
		if _, ok := probe.SelectAudioTrack(want, ""); !ok {
			report.Unmatched = append(report.Unmatched, want)
		}
	}
	return report
}

func containsLanguage(list []string, code string) bool {
	for _, have := range list {
		if language.Matches(have, code) {
			return true
		}
	}
	return false
}
