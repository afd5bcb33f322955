package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for render run identifiers.
	FieldRunID = "run_id"
	// FieldChunk is the standardized structured logging key for 1-based chunk indices.
	FieldChunk = "chunk"
	// FieldSceneIndex is the standardized structured logging key for scene sequence indices.
	FieldSceneIndex = "scene_index"
	// FieldSource is the standardized structured logging key for scene source identifiers.
	FieldSource = "source"
	// FieldEventType tags log records for machine filtering (run_start, chunk_complete, ...).
	FieldEventType = "event_type"
)

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	chunkIndexKey contextKey = "chunk"
)

// WithRunID stores the render run identifier on the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// WithChunkIndex stores the active chunk index on the context.
func WithChunkIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, chunkIndexKey, index)
}

// RunIDFromContext extracts the run identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ChunkIndexFromContext extracts the active chunk index, if present.
func ChunkIndexFromContext(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	index, ok := ctx.Value(chunkIndexKey).(int)
	return index, ok
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if index, ok := ChunkIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldChunk, index))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
