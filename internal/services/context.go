package services

import "context"

type contextKey string

const (
	runIDKey       contextKey = "run_id"
	sourceKey      contextKey = "source"
	sourceIndexKey contextKey = "source_index"
)

// WithRunID annotates context with the session run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the session run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSource annotates context with the audio source currently being processed.
func WithSource(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, sourceKey, name)
}

// SourceFromContext returns the audio source name if present.
func SourceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sourceKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSourceIndex annotates context with the source's position in the session.
func WithSourceIndex(ctx context.Context, index int) context.Context {
	if index < 0 {
		return ctx
	}
	return context.WithValue(ctx, sourceIndexKey, index)
}

// SourceIndexFromContext extracts the source position if present.
func SourceIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(sourceIndexKey).(int); ok {
		return v, true
	}
	return 0, false
}
