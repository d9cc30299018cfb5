// Package notifications sends optional run lifecycle pushes via ntfy.
package notifications
