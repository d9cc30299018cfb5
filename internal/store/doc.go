// Package store keeps a sqlite history of detection runs and the chapters
// they produced.
package store
