package classify

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"chapterfind/internal/logging"
	"chapterfind/internal/media/extract"
	"chapterfind/internal/whisper"
)

// Classifier transcribes a short window at a candidate position and checks
// whether it reads like a chapter heading.
type Classifier struct {
	engine          whisper.Engine
	ffmpegBinary    string
	snippetSeconds  float64
	matcher         *Matcher
	request         whisper.Request
	logger          *slog.Logger
	extractSnippet  func(ctx context.Context, binary, source string, offset, duration float64, dest string) error
}

// New constructs a Classifier. A nil logger disables logging.
func New(engine whisper.Engine, ffmpegBinary string, snippetSeconds float64, matcher *Matcher, request whisper.Request, logger *slog.Logger) *Classifier {
	return &Classifier{
		engine:         engine,
		ffmpegBinary:   ffmpegBinary,
		snippetSeconds: snippetSeconds,
		matcher:        matcher,
		request:        request,
		logger:         logging.NewComponentLogger(logger, "classify"),
		extractSnippet: extract.Snippet,
	}
}

// Check transcribes the window starting at offset and reports whether it is a
// heading, along with the transcribed text. Extraction or transcription
// failures degrade to a non-match; Check never returns an error.
func (c *Classifier) Check(ctx context.Context, source string, offset float64, workDir string) (bool, string) {
	wavPath := filepath.Join(workDir, fmt.Sprintf("snippet_%09d.wav", int64(offset*1000)))

	if err := c.extractSnippet(ctx, c.ffmpegBinary, source, offset, c.snippetSeconds, wavPath); err != nil {
		c.logger.Debug("snippet extraction failed",
			logging.Float64(logging.FieldOffsetSeconds, offset),
			logging.Error(err))
		return false, ""
	}

	result, err := c.engine.Transcribe(ctx, wavPath, c.request)
	if err != nil {
		c.logger.Debug("transcription failed",
			logging.Float64(logging.FieldOffsetSeconds, offset),
			logging.Error(err))
		return false, ""
	}

	text := result.Text()
	matched := c.matcher.Match(text)
	c.logger.Debug("candidate checked",
		logging.Float64(logging.FieldOffsetSeconds, offset),
		logging.Bool("matched", matched),
		logging.String("text", text))
	return matched, text
}
