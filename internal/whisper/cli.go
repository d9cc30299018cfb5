package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"chapterfind/internal/services"
)

// Config holds backend settings shared by every transcription call.
type Config struct {
	Binary      string
	ComputeType string
	Device      string
	ModelDir    string
}

// CLI shells out to the whisper-ctranslate2 command-line frontend.
type CLI struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewCLI creates a CLI engine with the given configuration.
func NewCLI(cfg Config) *CLI {
	if cfg.Binary == "" {
		cfg.Binary = "whisper-ctranslate2"
	}
	return &CLI{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *CLI) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	c.commandRunner = runner
}

// Transcribe runs the backend against a WAV snippet and parses the JSON
// transcript it writes next to the input.
func (c *CLI) Transcribe(ctx context.Context, wavPath string, req Request) (Result, error) {
	if wavPath == "" {
		return Result{}, services.Wrap(services.ErrValidation, "whisper", "transcribe", "wav path required", nil)
	}
	outputDir := filepath.Dir(wavPath)

	args := c.buildArgs(wavPath, outputDir, req)
	if err := c.run(ctx, c.cfg.Binary, args...); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "backend failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	fragments, err := loadFragments(jsonPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "read transcript", err)
	}
	return Result{Fragments: fragments}, nil
}

func (c *CLI) buildArgs(wavPath, outputDir string, req Request) []string {
	args := make([]string, 0, 24)
	args = append(args,
		wavPath,
		"--model", req.Profile.Model,
		"--beam_size", strconv.Itoa(req.Profile.BeamSize),
		"--best_of", strconv.Itoa(req.Profile.BestOf),
		"--temperature", strconv.FormatFloat(req.Profile.Temperature, 'f', -1, 64),
		"--output_format", "json",
		"--output_dir", outputDir,
	)
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if req.Prompt != "" {
		args = append(args, "--initial_prompt", req.Prompt)
	}
	if c.cfg.ComputeType != "" {
		args = append(args, "--compute_type", c.cfg.ComputeType)
	}
	if c.cfg.Device != "" {
		args = append(args, "--device", c.cfg.Device)
	}
	if c.cfg.ModelDir != "" {
		args = append(args, "--model_directory", c.cfg.ModelDir)
	}
	return args
}

func (c *CLI) run(ctx context.Context, name string, args ...string) error {
	if c.commandRunner != nil {
		return c.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment is one transcribed span from the backend's JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type transcriptPayload struct {
	Segments []Segment `json:"segments"`
}

func loadFragments(jsonPath string) ([]string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload transcriptPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse transcript json: %w", err)
	}
	fragments := make([]string, 0, len(payload.Segments))
	for _, segment := range payload.Segments {
		fragments = append(fragments, segment.Text)
	}
	return fragments, nil
}

var _ Engine = (*CLI)(nil)
