// Package journal persists render-run history to SQLite so past runs and
// their chunk outcomes survive process restarts and can be listed from the
// CLI. The pipeline writes through the render.Recorder interface; journal
// failures are reported to the caller but never abort a run.
package journal
