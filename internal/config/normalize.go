package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTools()
	c.normalizeTargets()
	c.normalizeWhisper()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	c.Tools.Whisper = strings.TrimSpace(c.Tools.Whisper)
	if c.Tools.Whisper == "" {
		c.Tools.Whisper = defaultWhisperBinary
	}
}

func (c *Config) normalizeTargets() {
	words := make([]string, 0, len(c.Targets.Words))
	seen := make(map[string]struct{}, len(c.Targets.Words))
	for _, word := range c.Targets.Words {
		normalized := strings.ToLower(strings.TrimSpace(word))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		words = append(words, normalized)
	}
	if len(words) == 0 {
		words = defaultTargetWords()
	}
	c.Targets.Words = words
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Profile = strings.ToLower(strings.TrimSpace(c.Whisper.Profile))
	if c.Whisper.Profile == "" {
		c.Whisper.Profile = defaultWhisperProfile
	}
	c.Whisper.ModelOverride = strings.TrimSpace(c.Whisper.ModelOverride)
	c.Whisper.ComputeType = strings.TrimSpace(c.Whisper.ComputeType)
	if c.Whisper.ComputeType == "" {
		c.Whisper.ComputeType = defaultWhisperComputeType
	}
	c.Whisper.Device = strings.TrimSpace(c.Whisper.Device)
	if c.Whisper.Device == "" {
		c.Whisper.Device = defaultWhisperDevice
	}
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	if c.Whisper.Language == "" {
		c.Whisper.Language = defaultWhisperLanguage
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Output.Dir) != "" {
		if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
			return fmt.Errorf("output.dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	if strings.TrimSpace(c.Whisper.ModelDir) != "" {
		if c.Whisper.ModelDir, err = expandPath(c.Whisper.ModelDir); err != nil {
			return fmt.Errorf("whisper.model_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
