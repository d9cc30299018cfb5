// Package session orchestrates a detection run: source resolution, per-file
// silence scanning and candidate classification, global offset accumulation,
// and incremental crash-safe artifact output.
package session
