package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chapterfind/internal/services"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "longbook.m4b")
	touch(t, path)

	input, err := ResolveSources(path)
	if err != nil {
		t.Fatalf("ResolveSources: %v", err)
	}
	if input.BaseName != "longbook" {
		t.Errorf("base name = %q", input.BaseName)
	}
	if input.Root != dir {
		t.Errorf("root = %q", input.Root)
	}
	if len(input.Sources) != 1 || input.Sources[0] != path {
		t.Errorf("sources = %v", input.Sources)
	}
}

func TestResolveDirectoryRecursiveSorted(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "trilogy")
	touch(t, filepath.Join(root, "book2", "01.mp3"))
	touch(t, filepath.Join(root, "book1", "02.mp3"))
	touch(t, filepath.Join(root, "book1", "01.mp3"))
	touch(t, filepath.Join(root, "book1", "cover.jpg"))
	touch(t, filepath.Join(root, "notes.txt"))

	input, err := ResolveSources(root)
	if err != nil {
		t.Fatalf("ResolveSources: %v", err)
	}
	if input.BaseName != "trilogy" {
		t.Errorf("base name = %q", input.BaseName)
	}
	want := []string{
		filepath.Join(root, "book1", "01.mp3"),
		filepath.Join(root, "book1", "02.mp3"),
		filepath.Join(root, "book2", "01.mp3"),
	}
	if len(input.Sources) != len(want) {
		t.Fatalf("sources = %v", input.Sources)
	}
	for i := range want {
		if input.Sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, input.Sources[i], want[i])
		}
	}
}

func TestResolveEmptyDirectoryFails(t *testing.T) {
	_, err := ResolveSources(t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveMissingPathFails(t *testing.T) {
	_, err := ResolveSources(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
