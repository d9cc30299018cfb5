// Package services holds cross-cutting helpers shared by pipeline components:
// sentinel error markers with contextual wrapping, and context annotations that
// carry run and source identity into structured logs.
package services
