// Package logging builds the application's slog loggers: a compact console
// handler for interactive use, a JSON handler for machine consumption, and
// helpers that thread run and source identity from context into log fields.
package logging
