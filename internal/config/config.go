package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tools contains the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Whisper string `toml:"whisper"`
}

// Silence contains silencedetect tuning.
type Silence struct {
	ThresholdDB        float64 `toml:"threshold_db"`
	MinDurationSeconds float64 `toml:"min_duration_seconds"`
	EndMarginSeconds   float64 `toml:"end_margin_seconds"`
}

// Snippet contains settings for the short audio windows sent to transcription.
type Snippet struct {
	DurationSeconds float64 `toml:"duration_seconds"`
}

// Targets controls which transcriptions count as chapter headings.
type Targets struct {
	Words         []string `toml:"words"`
	FirstWordOnly bool     `toml:"first_word_only"`
	NumbersOnly   bool     `toml:"numbers_only"`
}

// Whisper contains transcription backend settings.
type Whisper struct {
	Profile       string `toml:"profile"`
	ModelOverride string `toml:"model_override"`
	ComputeType   string `toml:"compute_type"`
	Device        string `toml:"device"`
	Language      string `toml:"language"`
	Prompt        string `toml:"prompt"`
	ModelDir      string `toml:"model_dir"`
}

// Output controls the chapter and silence artifact files.
type Output struct {
	Enabled     bool   `toml:"enabled"`
	IncludeText bool   `toml:"include_text"`
	TextFixup   bool   `toml:"text_fixup"`
	Silence     bool   `toml:"silence"`
	Dir         string `toml:"dir"`
}

// TestRun contains settings for processing a truncated copy of each source.
type TestRun struct {
	Enabled         bool `toml:"enabled"`
	DurationMinutes int  `toml:"duration_minutes"`
	Force           bool `toml:"force"`
}

// Store contains run-history database settings.
type Store struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for chapterfind.
//
// Configuration sections by subsystem:
//   - Tools: ffmpeg/ffprobe/whisper executable names or paths
//   - Silence: silencedetect threshold, duration, and end margin
//   - Snippet: transcription window length
//   - Targets: heading words and matching mode
//   - Whisper: profile, model override, and backend flags
//   - Output: chapter/silence file content and destination
//   - TestRun: truncated trial processing
//   - Store: run-history database
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and directory
type Config struct {
	Tools         Tools         `toml:"tools"`
	Silence       Silence       `toml:"silence"`
	Snippet       Snippet       `toml:"snippet"`
	Targets       Targets       `toml:"targets"`
	Whisper       Whisper       `toml:"whisper"`
	Output        Output        `toml:"output"`
	TestRun       TestRun       `toml:"test_run"`
	Store         Store         `toml:"store"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chapterfind/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. When no file exists the defaults
// are returned with exists set to false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chapterfind.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}
	if strings.TrimSpace(c.Output.Dir) != "" {
		dirs = append(dirs, c.Output.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
