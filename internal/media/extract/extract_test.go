package extract

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func captureArgs(t *testing.T) *[]string {
	t.Helper()
	orig := commandContext
	t.Cleanup(func() { commandContext = orig })

	var captured []string
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append([]string{name}, args...)
		return exec.CommandContext(ctx, "true")
	}
	return &captured
}

func TestSnippetArgs(t *testing.T) {
	captured := captureArgs(t)

	if err := Snippet(context.Background(), "ffmpeg", "book.m4b", 12.3, 5, "out.wav"); err != nil {
		t.Fatalf("Snippet: %v", err)
	}

	joined := strings.Join(*captured, " ")
	for _, want := range []string{
		"-ss 12.3",
		"-t 5",
		"-i book.m4b",
		"-ac 1",
		"-ar 16000",
		"-c:a pcm_s16le",
		"out.wav",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
	if !strings.HasPrefix(joined, "ffmpeg ") {
		t.Errorf("binary not honored: %q", joined)
	}
}

func TestSnippetRejectsBadRange(t *testing.T) {
	if err := Snippet(context.Background(), "ffmpeg", "book.m4b", -1, 5, "out.wav"); err == nil {
		t.Error("negative offset should fail")
	}
	if err := Snippet(context.Background(), "ffmpeg", "book.m4b", 0, 0, "out.wav"); err == nil {
		t.Error("zero duration should fail")
	}
}

func TestTruncateArgs(t *testing.T) {
	captured := captureArgs(t)

	if err := Truncate(context.Background(), "ffmpeg", "book.m4b", 7200, "trial.m4b"); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	joined := strings.Join(*captured, " ")
	for _, want := range []string{"-i book.m4b", "-t 7200", "-c copy", "trial.m4b"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestTruncateRejectsBadLimit(t *testing.T) {
	if err := Truncate(context.Background(), "ffmpeg", "book.m4b", 0, "trial.m4b"); err == nil {
		t.Error("zero limit should fail")
	}
}
