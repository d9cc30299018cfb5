// Package silence locates sustained quiet gaps in audio files by streaming
// ffmpeg silencedetect output. Gap boundaries become candidate chapter
// positions for the transcription stage.
package silence
