package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"chapterfind/internal/config"
	"chapterfind/internal/media/silence"
)

type fakeDetector struct {
	markers map[string][]float64
	err     error
	totals  []float64
}

func (f *fakeDetector) Detect(ctx context.Context, source string, totalSeconds float64, progress func(silence.Progress)) ([]float64, error) {
	f.totals = append(f.totals, totalSeconds)
	if f.err != nil {
		return nil, f.err
	}
	return f.markers[filepath.Base(source)], nil
}

type fakeChecker struct {
	fn      func(source string, offset float64) (bool, string)
	checked []float64
}

func (f *fakeChecker) Check(ctx context.Context, source string, offset float64, workDir string) (bool, string) {
	f.checked = append(f.checked, offset)
	if f.fn == nil {
		return false, ""
	}
	return f.fn(source, offset)
}

type harness struct {
	controller  *Controller
	chapters    *MemorySink
	silences    *MemorySink
	durations   map[string]float64
	truncations []float64
}

func newHarness(t *testing.T, cfg *config.Config, detector Detector, checker Checker) *harness {
	t.Helper()
	h := &harness{
		chapters:  &MemorySink{},
		silences:  &MemorySink{},
		durations: map[string]float64{},
	}
	h.controller = NewController(cfg, detector, checker, nil, nil, Events{})
	h.controller.chapterSink = h.chapters
	h.controller.silenceSink = h.silences
	h.controller.tempRoot = t.TempDir()
	h.controller.probeDuration = func(ctx context.Context, binary, path string) (float64, error) {
		duration, ok := h.durations[filepath.Base(path)]
		if !ok {
			return 0, errors.New("probe failed")
		}
		return duration, nil
	}
	h.controller.truncate = func(ctx context.Context, binary, source string, limitSeconds float64, dest string) error {
		h.truncations = append(h.truncations, limitSeconds)
		return nil
	}
	return h
}

func defaultTestConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func TestRunEndToEndSingleFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "book.m4b")
	touch(t, source)

	detector := &fakeDetector{markers: map[string][]float64{"book.m4b": {299.5}}}
	checker := &fakeChecker{fn: func(source string, offset float64) (bool, string) {
		if offset == 299.5 {
			return true, "part two"
		}
		return false, ""
	}}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	h.durations["book.m4b"] = 600

	summary, err := h.controller.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(h.chapters.Lines) != 1 || h.chapters.Lines[0] != "Part Two\t00:04:59.500" {
		t.Errorf("chapter lines = %v", h.chapters.Lines)
	}
	if len(h.silences.Lines) != 1 || h.silences.Lines[0] != "00:04:59.500" {
		t.Errorf("silence lines = %v", h.silences.Lines)
	}
	if summary.ChapterCount != 1 || summary.SilenceCount != 1 || summary.SourcesProcessed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.BaseName != "book" {
		t.Errorf("base name = %q", summary.BaseName)
	}
}

func TestCandidatesIncludeFileStart(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "book.m4b")
	touch(t, source)

	detector := &fakeDetector{markers: map[string][]float64{"book.m4b": {12.3, 47.0}}}
	checker := &fakeChecker{}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	h.durations["book.m4b"] = 100

	if _, err := h.controller.Run(context.Background(), source); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []float64{0.0, 12.3, 47.0}
	if fmt.Sprint(checker.checked) != fmt.Sprint(want) {
		t.Errorf("candidates checked = %v, want %v", checker.checked, want)
	}
}

func TestOffsetAccumulationAcrossSources(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "01.m4b"))
	touch(t, filepath.Join(dir, "02.m4b"))

	detector := &fakeDetector{markers: map[string][]float64{"02.m4b": {100.0}}}
	checker := &fakeChecker{fn: func(source string, offset float64) (bool, string) {
		if filepath.Base(source) == "02.m4b" && offset == 100.0 {
			return true, "chapter two"
		}
		return false, ""
	}}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	h.durations["01.m4b"] = 5
	h.durations["02.m4b"] = 400

	summary, err := h.controller.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.Chapters) != 1 {
		t.Fatalf("chapters = %+v", summary.Chapters)
	}
	chapter := summary.Chapters[0]
	if chapter.GlobalOffsetSeconds != 105.0 {
		t.Errorf("global offset = %v, want 105", chapter.GlobalOffsetSeconds)
	}
	if chapter.Timestamp != "00:01:45.000" {
		t.Errorf("timestamp = %q", chapter.Timestamp)
	}
	if len(h.silences.Lines) != 1 || h.silences.Lines[0] != "00:01:45.000" {
		t.Errorf("silence lines should be globally adjusted: %v", h.silences.Lines)
	}
}

func TestDuplicateChaptersDropped(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "book.m4b")
	touch(t, source)

	detector := &fakeDetector{markers: map[string][]float64{"book.m4b": {10.0, 10.0}}}
	checker := &fakeChecker{fn: func(source string, offset float64) (bool, string) {
		if offset == 10.0 {
			return true, "chapter one"
		}
		return false, ""
	}}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	h.durations["book.m4b"] = 100

	summary, err := h.controller.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ChapterCount != 1 || len(h.chapters.Lines) != 1 {
		t.Errorf("duplicates not collapsed: %v", h.chapters.Lines)
	}
}

func TestTestRunBudgetAcrossSources(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "01.m4b"))
	touch(t, filepath.Join(dir, "02.m4b"))
	touch(t, filepath.Join(dir, "03.m4b"))

	cfg := defaultTestConfig()
	cfg.TestRun.Enabled = true
	cfg.TestRun.DurationMinutes = 2

	detector := &fakeDetector{}
	checker := &fakeChecker{}

	h := newHarness(t, cfg, detector, checker)
	h.durations["01.m4b"] = 50
	h.durations["02.m4b"] = 90
	h.durations["03.m4b"] = 90

	summary, err := h.controller.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.SourcesProcessed != 2 || summary.SourcesSkipped != 1 {
		t.Errorf("processed/skipped = %d/%d, want 2/1", summary.SourcesProcessed, summary.SourcesSkipped)
	}
	// First file fits the 120s budget whole; the second is truncated to the
	// remaining 70s; the third sees a zero budget and is skipped.
	if fmt.Sprint(detector.totals) != fmt.Sprint([]float64{50, 70}) {
		t.Errorf("processed durations = %v, want [50 70]", detector.totals)
	}
	if len(h.truncations) != 1 || h.truncations[0] != 70 {
		t.Errorf("truncations = %v, want [70]", h.truncations)
	}
}

func TestProbeFailureSkipsSourceWithoutAdvancingOffset(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "01.m4b"))
	touch(t, filepath.Join(dir, "02.m4b"))

	detector := &fakeDetector{markers: map[string][]float64{"02.m4b": {30.0}}}
	checker := &fakeChecker{fn: func(source string, offset float64) (bool, string) {
		return offset == 30.0, "chapter five"
	}}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	// 01.m4b has no duration entry so its probe fails.
	h.durations["02.m4b"] = 100

	summary, err := h.controller.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SourcesSkipped != 1 || summary.SourcesProcessed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Chapters) != 1 || summary.Chapters[0].GlobalOffsetSeconds != 30.0 {
		t.Errorf("skipped source must not advance the offset: %+v", summary.Chapters)
	}
}

func TestSilenceDetectionFailureStillChecksFileStart(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "book.m4b")
	touch(t, source)

	detector := &fakeDetector{err: errors.New("ffmpeg exited 1")}
	checker := &fakeChecker{fn: func(source string, offset float64) (bool, string) {
		return true, "chapter one"
	}}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	h.durations["book.m4b"] = 100

	summary, err := h.controller.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("detector failure must not abort the run: %v", err)
	}
	if summary.SourcesProcessed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if fmt.Sprint(checker.checked) != fmt.Sprint([]float64{0.0}) {
		t.Errorf("file start should still be tested: %v", checker.checked)
	}
	if summary.ChapterCount != 1 {
		t.Errorf("chapter at file start lost: %+v", summary)
	}
}

func TestBareTimestampOutput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "book.m4b")
	touch(t, source)

	cfg := defaultTestConfig()
	cfg.Output.IncludeText = false

	detector := &fakeDetector{markers: map[string][]float64{"book.m4b": {299.5}}}
	checker := &fakeChecker{fn: func(source string, offset float64) (bool, string) {
		return offset == 299.5, "part two"
	}}

	h := newHarness(t, cfg, detector, checker)
	h.durations["book.m4b"] = 600

	if _, err := h.controller.Run(context.Background(), source); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.chapters.Lines) != 1 || h.chapters.Lines[0] != "00:04:59.500" {
		t.Errorf("chapter lines = %v", h.chapters.Lines)
	}
}

func TestWallClockBucketsSumToElapsed(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "book.m4b")
	touch(t, source)

	detector := &fakeDetector{markers: map[string][]float64{"book.m4b": {10.0}}}
	checker := &fakeChecker{}

	h := newHarness(t, defaultTestConfig(), detector, checker)
	h.durations["book.m4b"] = 100

	summary, err := h.controller.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	total := summary.SilenceTime + summary.TranscriptionTime + summary.OtherTime
	if total != summary.Elapsed {
		t.Errorf("buckets sum %v != elapsed %v", total, summary.Elapsed)
	}
}
