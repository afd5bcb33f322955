// Package logging constructs the slog loggers used across megacut and
// provides typed attribute helpers plus the console and JSON handlers.
package logging
