package session

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"chapterfind/internal/config"
	"chapterfind/internal/logging"
	"chapterfind/internal/media/extract"
	"chapterfind/internal/media/ffprobe"
	"chapterfind/internal/media/silence"
	"chapterfind/internal/services"
	"chapterfind/internal/store"
	"chapterfind/internal/timecode"
	"chapterfind/internal/title"
)

// Detector finds candidate chapter positions in one source file.
type Detector interface {
	Detect(ctx context.Context, source string, totalSeconds float64, progress func(silence.Progress)) ([]float64, error)
}

// Checker decides whether one candidate position is a chapter boundary.
type Checker interface {
	Check(ctx context.Context, source string, offset float64, workDir string) (bool, string)
}

// Chapter is one accepted boundary on the session's global timeline.
type Chapter struct {
	Title               string
	GlobalOffsetSeconds float64
	Timestamp           string
	Source              string
	SourceIndex         int
}

// Events carries optional callbacks for interactive progress rendering.
type Events struct {
	SourceStart     func(source string, index, total int)
	SilenceProgress func(source string, progress silence.Progress)
	CandidateStart  func(source string, index, total int)
	ChapterFound    func(chapter Chapter)
}

// Summary reports what a run accomplished.
type Summary struct {
	RunID            string
	BaseName         string
	ChapterFile      string
	SilenceFile      string
	SourcesTotal     int
	SourcesProcessed int
	SourcesSkipped   int
	SilenceCount     int
	ChapterCount     int
	Chapters         []Chapter

	// Wall-clock buckets; SilenceTime + TranscriptionTime + OtherTime == Elapsed.
	SilenceTime       time.Duration
	TranscriptionTime time.Duration
	OtherTime         time.Duration
	Elapsed           time.Duration
}

// Controller orchestrates one detection run across the resolved sources,
// accumulating a global time offset and appending artifacts incrementally.
type Controller struct {
	cfg      *config.Config
	detector Detector
	checker  Checker
	logger   *slog.Logger
	history  *store.Store
	events   Events

	probeDuration func(ctx context.Context, binary, path string) (float64, error)
	truncate      func(ctx context.Context, binary, source string, limitSeconds float64, dest string) error
	chapterSink   Sink
	silenceSink   Sink
	tempRoot      string
	now           func() time.Time
}

// NewController wires a Controller. The history store may be nil; events
// callbacks are optional.
func NewController(cfg *config.Config, detector Detector, checker Checker, logger *slog.Logger, history *store.Store, events Events) *Controller {
	return &Controller{
		cfg:           cfg,
		detector:      detector,
		checker:       checker,
		logger:        logging.NewComponentLogger(logger, "session"),
		history:       history,
		events:        events,
		probeDuration: ffprobe.Duration,
		truncate:      extract.Truncate,
		tempRoot:      os.TempDir(),
		now:           time.Now,
	}
}

// Run processes every source under inputPath and returns the session summary.
// Failures inside one source degrade to skipping that source; only resolution
// and output setup abort the run.
func (c *Controller) Run(ctx context.Context, inputPath string) (*Summary, error) {
	started := c.now()

	input, err := ResolveSources(inputPath)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)

	summary := &Summary{
		RunID:        runID,
		BaseName:     input.BaseName,
		SourcesTotal: len(input.Sources),
	}

	if c.cfg.Output.Enabled {
		if err := c.openSinks(input, summary); err != nil {
			return nil, err
		}
		defer c.closeSinks()
	}

	if c.history != nil {
		record := store.RunRecord{
			ID:          runID,
			InputPath:   input.Path,
			BaseName:    input.BaseName,
			Profile:     c.cfg.Whisper.Profile,
			TestRun:     c.cfg.TestRun.Enabled,
			SourceCount: len(input.Sources),
			StartedAt:   started,
		}
		if err := c.history.CreateRun(ctx, record); err != nil {
			logger.Warn("run history unavailable", logging.Error(err))
		}
	}

	budgetRemaining := math.Inf(1)
	if c.cfg.TestRun.Enabled {
		budgetRemaining = float64(c.cfg.TestRun.DurationMinutes) * 60
	}

	runningOffset := 0.0
	seen := make(map[string]struct{})

	for index, source := range input.Sources {
		sourceCtx := services.WithSourceIndex(services.WithSource(ctx, filepath.Base(source)), index+1)
		sourceLog := logging.WithContext(sourceCtx, c.logger)
		if c.events.SourceStart != nil {
			c.events.SourceStart(source, index+1, len(input.Sources))
		}

		if budgetRemaining <= 0 {
			sourceLog.Info("test-run budget exhausted, skipping source")
			summary.SourcesSkipped++
			continue
		}

		processed := c.processSource(sourceCtx, sourceLog, source, index+1, budgetRemaining, runningOffset, seen, summary)
		if processed <= 0 {
			summary.SourcesSkipped++
			continue
		}

		runningOffset += processed
		budgetRemaining -= processed
		summary.SourcesProcessed++
	}

	summary.Elapsed = c.now().Sub(started)
	summary.OtherTime = summary.Elapsed - summary.SilenceTime - summary.TranscriptionTime
	if summary.OtherTime < 0 {
		summary.OtherTime = 0
	}

	if c.history != nil {
		totals := store.RunTotals{
			ChapterCount:         summary.ChapterCount,
			SilenceCount:         summary.SilenceCount,
			SilenceSeconds:       summary.SilenceTime.Seconds(),
			TranscriptionSeconds: summary.TranscriptionTime.Seconds(),
			OtherSeconds:         summary.OtherTime.Seconds(),
		}
		if err := c.history.FinishRun(ctx, runID, store.StatusCompleted, totals, ""); err != nil {
			logger.Warn("run history unavailable", logging.Error(err))
		}
	}

	logger.Info("run complete",
		logging.Int("sources", summary.SourcesProcessed),
		logging.Int("skipped", summary.SourcesSkipped),
		logging.Int("silences", summary.SilenceCount),
		logging.Int("chapters", summary.ChapterCount),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// processSource handles one file end to end and returns the duration consumed
// from the session budget, or 0 when the source was skipped.
func (c *Controller) processSource(ctx context.Context, logger *slog.Logger, source string, sourceIndex int, budgetRemaining, runningOffset float64, seen map[string]struct{}, summary *Summary) float64 {
	duration, err := c.probeDuration(ctx, c.cfg.Tools.FFprobe, source)
	if err != nil {
		logger.Warn("duration probe failed, skipping source", logging.Error(err))
		return 0
	}

	processPath := source
	processedDuration := duration
	if c.cfg.TestRun.Enabled && duration > budgetRemaining {
		processPath, processedDuration = c.prepareTestRunFile(ctx, logger, source, duration, budgetRemaining)
	}

	workDir := filepath.Join(c.tempRoot, "chapterfind-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		logger.Warn("cannot create work directory, skipping source", logging.Error(err))
		return 0
	}
	defer os.RemoveAll(workDir)

	silenceStart := c.now()
	markers, err := c.detector.Detect(ctx, processPath, processedDuration, func(p silence.Progress) {
		if c.events.SilenceProgress != nil {
			c.events.SilenceProgress(source, p)
		}
	})
	summary.SilenceTime += c.now().Sub(silenceStart)
	if err != nil {
		logger.Warn("silence detection failed, continuing with no markers", logging.Error(err))
		markers = nil
	}
	for _, marker := range markers {
		logger.Info("silence marker", logging.String("timestamp", timecode.FormatMillis(marker+runningOffset)))
	}

	candidates := buildCandidates(markers)
	for ci, candidate := range candidates {
		if c.events.CandidateStart != nil {
			c.events.CandidateStart(source, ci+1, len(candidates))
		}

		transcribeStart := c.now()
		matched, text := c.checker.Check(ctx, processPath, candidate, workDir)
		summary.TranscriptionTime += c.now().Sub(transcribeStart)
		if !matched {
			continue
		}

		normalized := title.Normalize(text, c.cfg.Output.TextFixup)
		if normalized == "" {
			continue
		}
		global := candidate + runningOffset
		timestamp := timecode.FormatMillis(global)

		key := normalized + "\t" + timestamp
		if _, duplicate := seen[key]; duplicate {
			logger.Debug("duplicate chapter dropped",
				logging.String("title", normalized),
				logging.String("timestamp", timestamp))
			continue
		}
		seen[key] = struct{}{}

		chapter := Chapter{
			Title:               normalized,
			GlobalOffsetSeconds: global,
			Timestamp:           timestamp,
			Source:              source,
			SourceIndex:         sourceIndex,
		}
		summary.Chapters = append(summary.Chapters, chapter)
		summary.ChapterCount++

		logger.Info("chapter found",
			logging.String("title", normalized),
			logging.String("timestamp", timestamp))

		if c.chapterSink != nil {
			line := timestamp
			if c.cfg.Output.IncludeText {
				line = normalized + "\t" + timestamp
			}
			if err := c.chapterSink.Append(line); err != nil {
				logger.Warn("chapter file write failed", logging.Error(err))
			}
		}
		if c.history != nil {
			record := store.ChapterRecord{
				RunID:         summary.RunID,
				SourceIndex:   sourceIndex,
				Source:        filepath.Base(source),
				Title:         normalized,
				OffsetSeconds: global,
				Timestamp:     timestamp,
			}
			if err := c.history.AppendChapter(ctx, record); err != nil {
				logger.Warn("run history unavailable", logging.Error(err))
			}
		}
		if c.events.ChapterFound != nil {
			c.events.ChapterFound(chapter)
		}
	}

	if c.silenceSink != nil {
		for _, marker := range markers {
			if err := c.silenceSink.Append(timecode.FormatMillis(marker + runningOffset)); err != nil {
				logger.Warn("silence file write failed", logging.Error(err))
			}
		}
	}
	summary.SilenceCount += len(markers)

	return processedDuration
}

// prepareTestRunFile truncates a source that exceeds the remaining budget and
// returns the path and duration to process. A `<stem>_testrun<ext>` copy next
// to the source is reused unless force recreation is configured; when the
// stream copy fails the original file is processed in full.
func (c *Controller) prepareTestRunFile(ctx context.Context, logger *slog.Logger, source string, duration, budgetRemaining float64) (string, float64) {
	ext := filepath.Ext(source)
	trialPath := strings.TrimSuffix(source, ext) + testRunSuffix + ext

	if !c.cfg.TestRun.Force {
		if _, err := os.Stat(trialPath); err == nil {
			logger.Info("reusing existing test-run file", logging.String("path", trialPath))
			return trialPath, budgetRemaining
		}
	}

	if err := c.truncate(ctx, c.cfg.Tools.FFmpeg, source, budgetRemaining, trialPath); err != nil {
		logger.Warn("test-run truncation failed, processing full source", logging.Error(err))
		return source, duration
	}
	logger.Info("created test-run file",
		logging.String("path", trialPath),
		logging.Float64("limit_seconds", budgetRemaining))
	return trialPath, budgetRemaining
}

// buildCandidates returns {0.0} union the markers, ascending. The file start
// is always tested because chapter one rarely follows a silence.
func buildCandidates(markers []float64) []float64 {
	candidates := make([]float64, 0, len(markers)+1)
	candidates = append(candidates, 0.0)
	for _, marker := range markers {
		if marker == 0.0 {
			continue
		}
		candidates = append(candidates, marker)
	}
	return candidates
}

func (c *Controller) openSinks(input Input, summary *Summary) error {
	outDir := c.cfg.Output.Dir
	if outDir == "" {
		outDir = input.Root
	}
	summary.ChapterFile = filepath.Join(outDir, input.BaseName+"_chapters.txt")
	summary.SilenceFile = filepath.Join(outDir, input.BaseName+"_silences.txt")

	if c.chapterSink == nil {
		sink, err := NewFileSink(summary.ChapterFile)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "session", "output", "open chapter file", err)
		}
		c.chapterSink = sink
	}
	if c.silenceSink == nil && c.cfg.Output.Silence {
		sink, err := NewFileSink(summary.SilenceFile)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "session", "output", "open silence file", err)
		}
		c.silenceSink = sink
	}
	return nil
}

func (c *Controller) closeSinks() {
	if c.chapterSink != nil {
		_ = c.chapterSink.Close()
	}
	if c.silenceSink != nil {
		_ = c.silenceSink.Close()
	}
}
