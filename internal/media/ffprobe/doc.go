// Package ffprobe inspects source media files via the ffprobe CLI and
// exposes the duration and audio-track metadata the pipeline needs.
package ffprobe
