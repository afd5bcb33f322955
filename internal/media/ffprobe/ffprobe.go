package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"megacut/internal/language"
)

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int        `json:"index"`
	CodecName string     `json:"codec_name"`
	CodecType string     `json:"codec_type"`
	Channels  int        `json:"channels"`
	Tags      StreamTags `json:"tags"`
}

// StreamTags carries the container tags attached to a stream.
type StreamTags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// AudioTrack summarizes one audio stream for track selection and reporting.
type AudioTrack struct {
	Index    int
	Language string
	Title    string
	Codec    string
	Channels int
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Duration returns the container duration, or 0 when unavailable.
func (r Result) Duration() time.Duration {
	seconds := parseFloat(r.Format.Duration)
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// AudioTracks lists the audio streams with their language and title tags.
func (r Result) AudioTracks() []AudioTrack {
	var tracks []AudioTrack
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		language := strings.TrimSpace(stream.Tags.Language)
		if language == "" {
			language = "unknown"
		}
		tracks = append(tracks, AudioTrack{
			Index:    stream.Index,
			Language: language,
			Title:    strings.TrimSpace(stream.Tags.Title),
			Codec:    stream.CodecName,
			Channels: stream.Channels,
		})
	}
	return tracks
}

// SelectAudioTrack picks the audio track matching the requested language and,
// when given, audio title. It returns the stream index and true on a match.
// Language matching accepts both two- and three-letter code forms.
func (r Result) SelectAudioTrack(language, title string) (int, bool) {
	language = strings.ToLower(strings.TrimSpace(language))
	title = strings.TrimSpace(title)
	if language == "" && title == "" {
		return 0, false
	}
	var fallback = -1
	for _, track := range r.AudioTracks() {
		langMatch := language == "" || languageMatches(language, track.Language)
		if !langMatch {
			continue
		}
		if title != "" && strings.EqualFold(track.Title, title) {
			return track.Index, true
		}
		if fallback < 0 {
			fallback = track.Index
		}
	}
	if fallback >= 0 {
		return fallback, true
	}
	return 0, false
}

func languageMatches(requested, actual string) bool {
	return language.Matches(requested, actual)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}
