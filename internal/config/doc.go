// Package config loads, validates, and normalizes chapterfind's TOML
// configuration. Defaults are embedded so the tool runs without a config file.
package config
