// Package timecode converts between seconds and HH:MM:SS[.mmm] text.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders seconds as HH:MM:SS, rounding to the nearest second.
func Format(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatMillis renders seconds as HH:MM:SS.mmm.
func FormatMillis(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	millis := totalMillis % 1000
	total := totalMillis / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", total/3600, (total%3600)/60, total%60, millis)
}

// Parse reads HH:MM:SS[.mmm], MM:SS[.mmm], or a bare seconds value.
func Parse(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, errors.New("parse timecode: empty input")
	}

	parts := strings.Split(trimmed, ":")
	switch len(parts) {
	case 1:
		value, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("parse timecode %q: %w", text, err)
		}
		return value, nil
	case 2:
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("parse timecode %q: %w", text, err)
		}
		seconds, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse timecode %q: %w", text, err)
		}
		return float64(minutes)*60 + seconds, nil
	case 3:
		hours, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("parse timecode %q: %w", text, err)
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("parse timecode %q: %w", text, err)
		}
		seconds, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("parse timecode %q: %w", text, err)
		}
		return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
	default:
		return 0, fmt.Errorf("parse timecode %q: too many separators", text)
	}
}
