package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses persisted in the database.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunRecord summarizes one session.
type RunRecord struct {
	ID           string
	InputPath    string
	BaseName     string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Profile      string
	TestRun      bool
	SourceCount  int
	ChapterCount int
	SilenceCount int
	ErrorMessage string

	// Wall-clock buckets in seconds; they sum to the run's elapsed time.
	SilenceSeconds       float64
	TranscriptionSeconds float64
	OtherSeconds         float64
}

// ChapterRecord mirrors one line written to a chapter file.
type ChapterRecord struct {
	RunID         string
	SourceIndex   int
	Source        string
	Title         string
	OffsetSeconds float64
	Timestamp     string
}

// Store persists run history alongside the chapter files so past sessions can
// be inspected after the artifacts move.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run-history database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input_path TEXT NOT NULL DEFAULT '',
	base_name TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL,
	profile TEXT NOT NULL DEFAULT '',
	test_run INTEGER NOT NULL DEFAULT 0,
	source_count INTEGER NOT NULL DEFAULT 0,
	chapter_count INTEGER NOT NULL DEFAULT 0,
	silence_count INTEGER NOT NULL DEFAULT 0,
	silence_seconds REAL NOT NULL DEFAULT 0,
	transcription_seconds REAL NOT NULL DEFAULT 0,
	other_seconds REAL NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS chapters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	source_index INTEGER NOT NULL DEFAULT 0,
	source TEXT NOT NULL,
	title TEXT NOT NULL,
	offset_seconds REAL NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chapters_run ON chapters(run_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// CreateRun records the start of a session.
func (s *Store) CreateRun(ctx context.Context, record RunRecord) error {
	startedAt := record.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, base_name, started_at, status, profile, test_run, source_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.InputPath, record.BaseName, startedAt.UTC().Format(time.RFC3339),
		StatusRunning, record.Profile, boolToInt(record.TestRun), record.SourceCount)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// AppendChapter records one accepted chapter boundary. Chapters are written
// incrementally so a crashed run still leaves its history behind.
func (s *Store) AppendChapter(ctx context.Context, record ChapterRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (run_id, source_index, source, title, offset_seconds, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		record.RunID, record.SourceIndex, record.Source, record.Title, record.OffsetSeconds, record.Timestamp)
	if err != nil {
		return fmt.Errorf("append chapter: %w", err)
	}
	return nil
}

// RunTotals carries the final counters and wall-clock buckets for a session.
type RunTotals struct {
	ChapterCount         int
	SilenceCount         int
	SilenceSeconds       float64
	TranscriptionSeconds float64
	OtherSeconds         float64
}

// FinishRun marks a session as completed or failed.
func (s *Store) FinishRun(ctx context.Context, runID, status string, totals RunTotals, errorMessage string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, chapter_count = ?, silence_count = ?,
		 silence_seconds = ?, transcription_seconds = ?, other_seconds = ?, error_message = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), status, totals.ChapterCount, totals.SilenceCount,
		totals.SilenceSeconds, totals.TranscriptionSeconds, totals.OtherSeconds, errorMessage, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, base_name, started_at, COALESCE(finished_at, ''), status, profile, test_run,
		 source_count, chapter_count, silence_count, silence_seconds, transcription_seconds, other_seconds, error_message
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var startedAt, finishedAt string
		var testRun int
		if err := rows.Scan(&record.ID, &record.InputPath, &record.BaseName, &startedAt, &finishedAt,
			&record.Status, &record.Profile, &testRun, &record.SourceCount, &record.ChapterCount,
			&record.SilenceCount, &record.SilenceSeconds, &record.TranscriptionSeconds,
			&record.OtherSeconds, &record.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		record.TestRun = testRun != 0
		record.StartedAt = parseTime(startedAt)
		record.FinishedAt = parseTime(finishedAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// ChaptersForRun returns the chapters recorded for one session, in insertion
// order.
func (s *Store) ChaptersForRun(ctx context.Context, runID string) ([]ChapterRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_index, source, title, offset_seconds, timestamp FROM chapters WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("chapters for run: %w", err)
	}
	defer rows.Close()

	var records []ChapterRecord
	for rows.Next() {
		var record ChapterRecord
		if err := rows.Scan(&record.RunID, &record.SourceIndex, &record.Source, &record.Title, &record.OffsetSeconds, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
