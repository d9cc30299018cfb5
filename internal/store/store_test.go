package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"chapterfind/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.CreateRun(ctx, store.RunRecord{
		ID:          "run-1",
		InputPath:   "/books/longbook",
		BaseName:    "longbook",
		Profile:     "flexible",
		TestRun:     true,
		SourceCount: 3,
	})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	chapters := []store.ChapterRecord{
		{RunID: "run-1", SourceIndex: 1, Source: "01.m4b", Title: "Chapter One", OffsetSeconds: 0, Timestamp: "00:00:00.000"},
		{RunID: "run-1", SourceIndex: 1, Source: "01.m4b", Title: "Chapter Two", OffsetSeconds: 312.5, Timestamp: "00:05:12.500"},
	}
	for _, chapter := range chapters {
		if err := s.AppendChapter(ctx, chapter); err != nil {
			t.Fatalf("AppendChapter: %v", err)
		}
	}

	totals := store.RunTotals{
		ChapterCount:         2,
		SilenceCount:         14,
		SilenceSeconds:       40,
		TranscriptionSeconds: 55,
		OtherSeconds:         5,
	}
	if err := s.FinishRun(ctx, "run-1", store.StatusCompleted, totals, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != store.StatusCompleted || run.ChapterCount != 2 || run.SilenceCount != 14 || !run.TestRun {
		t.Errorf("run = %+v", run)
	}
	if run.InputPath != "/books/longbook" || run.BaseName != "longbook" || run.Profile != "flexible" {
		t.Errorf("run identity = %+v", run)
	}
	if run.SilenceSeconds != 40 || run.TranscriptionSeconds != 55 || run.OtherSeconds != 5 {
		t.Errorf("buckets = %+v", run)
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		t.Errorf("timestamps not recorded: %+v", run)
	}

	got, err := s.ChaptersForRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ChaptersForRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
	if got[0].Title != "Chapter One" || got[1].Timestamp != "00:05:12.500" || got[1].SourceIndex != 1 {
		t.Errorf("chapters = %+v", got)
	}
}

func TestFailedRunKeepsPartialChapters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateRun(ctx, store.RunRecord{ID: "run-2", SourceCount: 1}); err != nil {
		t.Fatal(err)
	}
	chapter := store.ChapterRecord{RunID: "run-2", SourceIndex: 1, Source: "a.m4b", Title: "Part One", Timestamp: "00:00:00.000"}
	if err := s.AppendChapter(ctx, chapter); err != nil {
		t.Fatal(err)
	}
	if err := s.FinishRun(ctx, "run-2", store.StatusFailed, store.RunTotals{ChapterCount: 1}, "ffmpeg missing"); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].Status != store.StatusFailed || runs[0].ErrorMessage != "ffmpeg missing" {
		t.Errorf("run = %+v", runs[0])
	}
	chapters, err := s.ChaptersForRun(ctx, "run-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 1 {
		t.Errorf("partial chapters should survive a failed run: %v", chapters)
	}
}

func TestRecentRunsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.CreateRun(ctx, store.RunRecord{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit not applied: %d runs", len(runs))
	}
}
