package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSilence(); err != nil {
		return err
	}
	if err := c.validateSnippet(); err != nil {
		return err
	}
	if err := c.validateTargets(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateTestRun(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSilence() error {
	if c.Silence.ThresholdDB >= 0 {
		return errors.New("silence.threshold_db must be negative (decibels relative to full scale)")
	}
	if c.Silence.MinDurationSeconds <= 0 {
		return errors.New("silence.min_duration_seconds must be positive")
	}
	if c.Silence.EndMarginSeconds < 0 {
		return errors.New("silence.end_margin_seconds must be >= 0")
	}
	if c.Silence.EndMarginSeconds >= c.Silence.MinDurationSeconds {
		return errors.New("silence.end_margin_seconds must be smaller than silence.min_duration_seconds")
	}
	return nil
}

func (c *Config) validateSnippet() error {
	if c.Snippet.DurationSeconds <= 0 {
		return errors.New("snippet.duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTargets() error {
	if !c.Targets.NumbersOnly && len(c.Targets.Words) == 0 {
		return errors.New("targets.words must include at least one word unless targets.numbers_only is true")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if _, err := ParseProfile(c.Whisper.Profile); err != nil {
		return fmt.Errorf("whisper.profile: %w", err)
	}
	return nil
}

func (c *Config) validateTestRun() error {
	if c.TestRun.Enabled && c.TestRun.DurationMinutes <= 0 {
		return errors.New("test_run.duration_minutes must be positive when test_run.enabled is true")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
