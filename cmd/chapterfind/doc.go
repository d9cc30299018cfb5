// Package main hosts the chapterfind CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration resolution, structured
// logging, the detection pipeline, run history, and configuration scaffolding
// into terminal commands. Keep this package lean: add new functionality by
// extending the internal packages first, then surface it through dedicated
// commands or flags here.
package main
