package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chapterfind/internal/whisper"
)

type fakeEngine struct {
	text string
	err  error
}

func (f fakeEngine) Transcribe(ctx context.Context, wavPath string, req whisper.Request) (whisper.Result, error) {
	if f.err != nil {
		return whisper.Result{}, f.err
	}
	return whisper.Result{Fragments: []string{f.text}}, nil
}

func newTestClassifier(engine whisper.Engine) *Classifier {
	matcher := NewMatcher([]string{"chapter", "part", "section"}, true)
	classifier := New(engine, "ffmpeg", 5, matcher, whisper.Request{}, nil)
	classifier.extractSnippet = func(ctx context.Context, binary, source string, offset, duration float64, dest string) error {
		return nil
	}
	return classifier
}

func TestCheckMatchesHeading(t *testing.T) {
	classifier := newTestClassifier(fakeEngine{text: "Chapter seven. The long road."})
	matched, text := classifier.Check(context.Background(), "book.m4b", 12.3, t.TempDir())
	if !matched {
		t.Error("expected a match")
	}
	if text != "Chapter seven. The long road." {
		t.Errorf("text = %q", text)
	}
}

func TestCheckNonHeading(t *testing.T) {
	classifier := newTestClassifier(fakeEngine{text: "and then she said"})
	matched, text := classifier.Check(context.Background(), "book.m4b", 47.0, t.TempDir())
	if matched {
		t.Error("narration should not match")
	}
	if text == "" {
		t.Error("text should still be returned for non-matches")
	}
}

func TestCheckDegradesOnExtractionFailure(t *testing.T) {
	classifier := newTestClassifier(fakeEngine{text: "chapter one"})
	classifier.extractSnippet = func(ctx context.Context, binary, source string, offset, duration float64, dest string) error {
		return errors.New("ffmpeg exploded")
	}
	matched, text := classifier.Check(context.Background(), "book.m4b", 0, t.TempDir())
	if matched || text != "" {
		t.Errorf("extraction failure should yield false,\"\"; got %v,%q", matched, text)
	}
}

func TestCheckDegradesOnTranscriptionFailure(t *testing.T) {
	classifier := newTestClassifier(fakeEngine{err: errors.New("model load failed")})
	matched, text := classifier.Check(context.Background(), "book.m4b", 0, t.TempDir())
	if matched || text != "" {
		t.Errorf("transcription failure should yield false,\"\"; got %v,%q", matched, text)
	}
}

func TestCheckSnippetPathUsesOffset(t *testing.T) {
	classifier := newTestClassifier(fakeEngine{text: "chapter one"})
	var captured string
	classifier.extractSnippet = func(ctx context.Context, binary, source string, offset, duration float64, dest string) error {
		captured = dest
		return nil
	}
	classifier.Check(context.Background(), "book.m4b", 12.3, "/work")
	if !strings.Contains(captured, "000012300") {
		t.Errorf("snippet path should encode the millisecond offset: %q", captured)
	}
}
