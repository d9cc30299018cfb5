package silence

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"

	"chapterfind/internal/logging"
	"chapterfind/internal/services"
)

var commandContext = exec.CommandContext

var (
	// ffmpeg stats lines carry the current position, e.g. "... time=01:02:03.45 bitrate=...".
	progressPattern = regexp.MustCompile(`time=(\d{2,}):(\d{2}):(\d{2})\.(\d+)`)
	// silencedetect reports the end of each gap, e.g. "silence_end: 747.52 | silence_duration: 3.1".
	markerPattern = regexp.MustCompile(`silence_end: ([0-9]+(?:\.[0-9]+)?)`)
)

// Progress captures a scan position update.
type Progress struct {
	CurrentSeconds float64
	TotalSeconds   float64
	MarkerCount    int
	LastMarker     float64
}

// Options configures a detection pass.
type Options struct {
	ThresholdDB        float64
	MinDurationSeconds float64
	EndMarginSeconds   float64
}

// Detector runs ffmpeg's silencedetect filter over a source and collects
// candidate chapter positions from the gap boundaries.
type Detector struct {
	binary string
	opts   Options
	logger *slog.Logger
}

// NewDetector constructs a Detector. A nil logger disables logging.
func NewDetector(binary string, opts Options, logger *slog.Logger) *Detector {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Detector{
		binary: binary,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "silence"),
	}
}

// Detect scans the source and returns one marker per detected gap, in
// discovery order. Each marker sits EndMarginSeconds before the end of its
// gap, clamped at zero, so a transcription window starting there catches the
// first spoken words. ffmpeg's stderr is consumed while the process runs;
// totalSeconds is only used for progress reporting and may be zero.
func (d *Detector) Detect(ctx context.Context, source string, totalSeconds float64, progress func(Progress)) ([]float64, error) {
	if source == "" {
		return nil, services.Wrap(services.ErrValidation, "silence", "detect", "empty source path", nil)
	}

	filter := "silencedetect=noise=" + formatFloat(d.opts.ThresholdDB) + "dB:d=" + formatFloat(d.opts.MinDurationSeconds)
	args := []string{"-hide_banner", "-nostdin", "-i", source, "-af", filter, "-f", "null", "-"}

	cmd := commandContext(ctx, d.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "silence", "detect", "stdout pipe", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "silence", "detect", "start ffmpeg", err)
	}

	var markers []float64
	scanner := bufio.NewScanner(stdout)
	scanner.Split(scanStatsLines)
	for scanner.Scan() {
		line := scanner.Text()
		if end, ok := parseMarkerLine(line); ok {
			marker := end - d.opts.EndMarginSeconds
			if marker < 0 {
				marker = 0
			}
			markers = append(markers, marker)
			d.logger.Debug("gap detected",
				logging.Float64("silence_end", end),
				logging.Float64("marker", marker))
			continue
		}
		if current, ok := parseProgressLine(line); ok && progress != nil {
			update := Progress{
				CurrentSeconds: current,
				TotalSeconds:   totalSeconds,
				MarkerCount:    len(markers),
			}
			if len(markers) > 0 {
				update.LastMarker = markers[len(markers)-1]
			}
			progress(update)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "silence", "detect", "read ffmpeg output", err)
	}

	if err := cmd.Wait(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "silence", "detect", "ffmpeg exited", err)
	}

	d.logger.Debug("scan complete", logging.Int("markers", len(markers)))
	return markers, nil
}

// scanStatsLines splits on newlines and carriage returns so ffmpeg's
// in-place stats updates surface as individual lines.
func scanStatsLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseMarkerLine(line string) (float64, bool) {
	groups := markerPattern.FindStringSubmatch(line)
	if groups == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

func parseProgressLine(line string) (float64, bool) {
	groups := progressPattern.FindStringSubmatch(line)
	if groups == nil {
		return 0, false
	}
	hours, err1 := strconv.Atoi(groups[1])
	minutes, err2 := strconv.Atoi(groups[2])
	seconds, err3 := strconv.Atoi(groups[3])
	fraction, err4 := strconv.ParseFloat("0."+groups[4], 64)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60+seconds) + fraction, true
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
