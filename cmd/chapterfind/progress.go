package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"chapterfind/internal/media/silence"
	"chapterfind/internal/session"
)

// progressRenderer draws per-source silence detection progress and announces
// chapters as they are found. On non-terminal output it falls back to plain
// lines so logs stay readable.
type progressRenderer struct {
	out         io.Writer
	interactive bool
	bar         *progressbar.ProgressBar
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	return &progressRenderer{
		out:         out,
		interactive: isTerminal(out),
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressRenderer) sourceStart(source string, index, total int) {
	p.closeBar()
	fmt.Fprintf(p.out, "[%d/%d] %s\n", index, total, filepath.Base(source))
}

func (p *progressRenderer) silenceProgress(source string, progress silence.Progress) {
	if !p.interactive {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions64(int64(progress.TotalSeconds),
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set64(int64(progress.CurrentSeconds))
}

func (p *progressRenderer) chapterFound(chapter session.Chapter) {
	p.clearBar()
	fmt.Fprintf(p.out, "  %s  %s\n", chapter.Timestamp, chapter.Title)
}

func (p *progressRenderer) finish() {
	p.closeBar()
}

func (p *progressRenderer) clearBar() {
	if p.bar != nil {
		_ = p.bar.Clear()
	}
}

func (p *progressRenderer) closeBar() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
