package whisper

import (
	"context"
	"strings"

	"chapterfind/internal/config"
)

// Request holds per-call transcription parameters.
type Request struct {
	Profile  config.ProfileParams
	Language string
	Prompt   string
}

// Result carries the transcription of one audio snippet.
type Result struct {
	Fragments []string
}

// Text joins the transcribed fragments with single spaces.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Fragments))
	for _, fragment := range r.Fragments {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// Engine transcribes short audio snippets.
type Engine interface {
	Transcribe(ctx context.Context, wavPath string, req Request) (Result, error)
}
