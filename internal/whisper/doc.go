// Package whisper defines the snippet transcription engine and its
// whisper-ctranslate2 command-line implementation.
package whisper
