// Package progress tracks per-scene and per-chunk render state, derives
// ETAs from observed scene render times, and publishes events to a sink
// without ever blocking the pipeline on sink responsiveness.
package progress
