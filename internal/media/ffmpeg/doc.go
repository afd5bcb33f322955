// Package ffmpeg drives the ffmpeg CLI to extract scene clips, burn timeline
// overlays, and concatenate rendered clips into chunk outputs. The pipeline
// consumes it through the Capability interface so tests can substitute fakes.
package ffmpeg
