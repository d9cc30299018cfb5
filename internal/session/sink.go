package session

import (
	"fmt"
	"os"
)

// Sink receives one output line at a time. Implementations must make each
// appended line durable before returning so a crash mid-run preserves every
// marker found so far.
type Sink interface {
	Append(line string) error
	Close() error
}

// FileSink appends lines to a file, syncing after every write.
type FileSink struct {
	file *os.File
}

// NewFileSink opens (or creates) the file in append mode.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink %s: %w", path, err)
	}
	return &FileSink{file: file}, nil
}

// Append writes the line plus a trailing newline and flushes it to disk.
func (s *FileSink) Append(line string) error {
	if _, err := s.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append to %s: %w", s.file.Name(), err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.file.Name(), err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.file.Close()
}

// MemorySink collects lines in memory for tests and dry runs.
type MemorySink struct {
	Lines []string
}

func (m *MemorySink) Append(line string) error {
	m.Lines = append(m.Lines, line)
	return nil
}

func (m *MemorySink) Close() error { return nil }
