package session

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chapterfind/internal/services"
)

// testRunSuffix marks truncated trial copies written next to their originals.
const testRunSuffix = "_testrun"

var audioExtensions = map[string]struct{}{
	".aac":  {},
	".flac": {},
	".m4a":  {},
	".m4b":  {},
	".mka":  {},
	".mp3":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".wma":  {},
}

// Input is a resolved unit of work: the ordered source files plus the base
// name their shared output artifacts derive from.
type Input struct {
	Path     string
	BaseName string
	Root     string
	Sources  []string
}

// ResolveSources expands a file or directory path into the ordered source
// list. A directory is walked recursively for audio files, sorted by
// directory then filename; its name becomes the output base name. A single
// file is used as-is and contributes its stem.
func ResolveSources(path string) (Input, error) {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if cleaned == "" || cleaned == "." {
		return Input{}, services.Wrap(services.ErrValidation, "session", "resolve", "input path required", nil)
	}

	info, err := os.Stat(cleaned)
	if err != nil {
		return Input{}, services.Wrap(services.ErrNotFound, "session", "resolve", "stat input", err)
	}

	if !info.IsDir() {
		stem := strings.TrimSuffix(filepath.Base(cleaned), filepath.Ext(cleaned))
		return Input{
			Path:     cleaned,
			BaseName: stem,
			Root:     filepath.Dir(cleaned),
			Sources:  []string{cleaned},
		}, nil
	}

	var sources []string
	walkErr := filepath.WalkDir(cleaned, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry))
		if _, ok := audioExtensions[ext]; !ok {
			return nil
		}
		// Truncated copies from earlier test runs live next to their
		// originals and must not be picked up as sources themselves.
		stem := strings.TrimSuffix(filepath.Base(entry), ext)
		if strings.HasSuffix(stem, testRunSuffix) {
			return nil
		}
		sources = append(sources, entry)
		return nil
	})
	if walkErr != nil {
		return Input{}, services.Wrap(services.ErrNotFound, "session", "resolve", "walk input directory", walkErr)
	}
	if len(sources) == 0 {
		return Input{}, services.Wrap(services.ErrNotFound, "session", "resolve", "no audio files found under "+cleaned, nil)
	}

	sort.Slice(sources, func(i, j int) bool {
		di, dj := filepath.Dir(sources[i]), filepath.Dir(sources[j])
		if di != dj {
			return di < dj
		}
		return filepath.Base(sources[i]) < filepath.Base(sources[j])
	})

	return Input{
		Path:     cleaned,
		BaseName: filepath.Base(cleaned),
		Root:     cleaned,
		Sources:  sources,
	}, nil
}
