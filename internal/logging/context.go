package logging

import (
	"context"
	"log/slog"

	"chapterfind/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for session run identifiers.
	FieldRunID = "run_id"
	// FieldSource is the standardized structured logging key for the audio file being processed.
	FieldSource = "source"
	// FieldSourceIndex is the standardized structured logging key for the 1-based source position.
	FieldSourceIndex = "source_index"
	// FieldOffsetSeconds is the standardized structured logging key for positions within a source.
	FieldOffsetSeconds = "offset_seconds"
	// FieldCandidate is the standardized structured logging key for candidate chapter positions.
	FieldCandidate = "candidate"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if source, ok := services.SourceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSource, source))
	}
	if index, ok := services.SourceIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldSourceIndex, index))
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
