// Package extract shells out to ffmpeg for snippet extraction and stream-copy
// truncation.
package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Snippet writes a short mono 16kHz WAV window of the source starting at
// offsetSeconds, suitable for transcription.
func Snippet(ctx context.Context, ffmpegBinary, source string, offsetSeconds, durationSeconds float64, dest string) error {
	if offsetSeconds < 0 {
		return fmt.Errorf("extract snippet: invalid offset %v", offsetSeconds)
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("extract snippet: invalid duration %v", durationSeconds)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(offsetSeconds),
		"-t", formatSeconds(durationSeconds),
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := commandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg snippet: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Truncate stream-copies the first limitSeconds of the source into dest
// without re-encoding.
func Truncate(ctx context.Context, ffmpegBinary, source string, limitSeconds float64, dest string) error {
	if limitSeconds <= 0 {
		return fmt.Errorf("truncate: invalid limit %v", limitSeconds)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-t", formatSeconds(limitSeconds),
		"-c", "copy",
		dest,
	}
	cmd := commandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg truncate: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
